package console

import (
	"context"
	"fmt"
	"sync/atomic"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/export"
	"github.com/noah-isme/sma-adp-console/pkg/storage"
	"github.com/noah-isme/sma-adp-console/state"
)

const (
	qrCodeSize   = 256
	qrPosterSize = 512
)

type registrationClient interface {
	GenerateRegistrationLink(ctx context.Context, kind models.RegistrationKind, req dto.GenerateLinkRequest) (*models.RegistrationLink, error)
}

// RegistrationService issues self-registration links and renders them as QR
// codes and printable posters.
type RegistrationService struct {
	client    registrationClient
	store     *state.Store
	msgs      *MessageCenter
	audit     *AuditService
	exports   fileStorage
	pdf       *export.PDFExporter
	userEmail string
	logger    *zap.Logger

	submitting atomic.Bool
}

// NewRegistrationService constructs the registration service.
func NewRegistrationService(client registrationClient, store *state.Store, msgs *MessageCenter, audit *AuditService, exports fileStorage, userEmail string, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		client:    client,
		store:     store,
		msgs:      msgs,
		audit:     audit,
		exports:   exports,
		pdf:       export.NewPDFExporter(),
		userEmail: userEmail,
		logger:    logger,
	}
}

// GenerateLink requests a fresh self-registration URL for the current
// school. Only one generation may be in flight at a time.
func (s *RegistrationService) GenerateLink(ctx context.Context, kind models.RegistrationKind) (*models.RegistrationLink, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return nil, appErrors.Clone(appErrors.ErrBusy, "a link is already being generated")
	}
	defer s.submitting.Store(false)

	req := dto.GenerateLinkRequest{
		SchoolID:  s.store.Snapshot().Session.ResolvedSchoolID(),
		UserEmail: s.userEmail,
	}
	link, err := s.client.GenerateRegistrationLink(ctx, kind, req)
	if err != nil {
		s.msgs.Error(surfaceText(err))
		return nil, err
	}

	s.audit.Record(models.AuditActionLinkGenerate, string(kind), link.LinkID)
	s.msgs.Success("Registration link ready.")
	return link, nil
}

// QRCode renders a URL as a PNG QR image. Size is the square pixel edge.
func (s *RegistrationService) QRCode(url string, size int) ([]byte, error) {
	if url == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a link is required")
	}
	if size <= 0 {
		size = qrCodeSize
	}
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "rendering QR code")
	}
	return png, nil
}

// Poster renders a printable A4 PDF for the link and saves it under the
// exports directory, returning the file path.
func (s *RegistrationService) Poster(kind models.RegistrationKind, link *models.RegistrationLink) (string, error) {
	if link == nil || link.URL == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "a link is required")
	}

	png, err := s.QRCode(link.URL, qrPosterSize)
	if err != nil {
		return "", err
	}

	heading := "Students: join your school"
	steps := []string{
		"Scan the QR code with your phone or tablet.",
		"Sign in with your school email address.",
		"Fill in your details and submit.",
	}
	if kind == models.RegistrationKindStaff {
		heading = "Staff: join your school"
		steps = []string{
			"Scan the QR code with your phone or tablet.",
			"Sign in with your staff email address.",
			"Fill in your details and submit.",
		}
	}

	payload, err := s.pdf.RenderPoster(export.Poster{
		Heading:    heading,
		SchoolName: s.store.Snapshot().Session.Badge(),
		URL:        link.URL,
		ExpiresAt:  link.ExpiresAt,
		Steps:      steps,
		QRPNG:      png,
	})
	if err != nil {
		s.msgs.Error("Could not render the poster.")
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "rendering poster")
	}

	path, err := s.exports.Save(storage.Filename(fmt.Sprintf("%s_registration_poster", kind), "pdf"), payload)
	if err != nil {
		s.msgs.Error("Could not save the poster.")
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "saving poster")
	}
	s.msgs.Success("Poster saved.")
	return path, nil
}
