package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/emailaddr"
	"github.com/noah-isme/sma-adp-console/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/export"
	"github.com/noah-isme/sma-adp-console/pkg/storage"
	"github.com/noah-isme/sma-adp-console/state"
)

const defaultSearchDebounce = 300 * time.Millisecond

type directoryClient interface {
	ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

// DirectoryService drives the account listing: page loads, population and
// filter switches, debounced search, and local snapshot exports.
type DirectoryService struct {
	client  directoryClient
	store   *state.Store
	msgs    *MessageCenter
	audit   *AuditService
	exports fileStorage
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger

	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDirectoryService constructs the directory service.
func NewDirectoryService(client directoryClient, store *state.Store, msgs *MessageCenter, audit *AuditService, exports fileStorage, debounce time.Duration, logger *zap.Logger) *DirectoryService {
	if debounce <= 0 {
		debounce = defaultSearchDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		client:   client,
		store:    store,
		msgs:     msgs,
		audit:    audit,
		exports:  exports,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		debounce: debounce,
		logger:   logger,
	}
}

// Load fetches the page described by the current filter state and applies it.
// Responses for superseded loads are discarded rather than applied out of
// order.
func (s *DirectoryService) Load(ctx context.Context) error {
	gen := s.store.BeginLoad()
	filter := s.store.Filter()

	accounts, total, err := s.client.ListAccounts(ctx, filter)
	if err != nil {
		s.store.FailLoad(gen)
		s.msgs.Error(surfaceText(err))
		return err
	}
	if !s.store.ApplyAccounts(gen, deduplicateAccounts(accounts), total) {
		s.logger.Debug("discarded superseded listing response", zap.Uint64("generation", gen))
	}
	return nil
}

// SetAccountType switches between the student and staff populations and
// reloads from the first page.
func (s *DirectoryService) SetAccountType(ctx context.Context, t models.AccountType) error {
	s.store.SetAccountType(t)
	return s.Load(ctx)
}

// SetFilters applies the year-group and group filters and reloads.
func (s *DirectoryService) SetFilters(ctx context.Context, yearGroup, group string) error {
	s.store.SetFilters(yearGroup, group)
	return s.Load(ctx)
}

// SetSearch records the live search text and schedules a reload once typing
// pauses. Repeated calls inside the quiet period collapse into a single load.
func (s *DirectoryService) SetSearch(query string) {
	s.store.SetSearch(query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		_ = s.Load(context.Background())
	})
}

// SetPage jumps to the requested page, clamped to the known page range.
func (s *DirectoryService) SetPage(ctx context.Context, page int) error {
	if last := s.store.Snapshot().Pagination().TotalPages(); page > last {
		page = last
	}
	s.store.SetPage(page)
	return s.Load(ctx)
}

// NextPage advances one page when a later page exists.
func (s *DirectoryService) NextPage(ctx context.Context) error {
	p := s.store.Snapshot().Pagination()
	if !p.HasNext() {
		return nil
	}
	return s.SetPage(ctx, p.Page+1)
}

// PrevPage steps back one page when an earlier page exists.
func (s *DirectoryService) PrevPage(ctx context.Context) error {
	p := s.store.Snapshot().Pagination()
	if !p.HasPrev() {
		return nil
	}
	return s.SetPage(ctx, p.Page-1)
}

// Export renders the currently loaded page to a local CSV or PDF file and
// returns its path.
func (s *DirectoryService) Export(format models.ExportFormat) (string, error) {
	snapshot := s.store.Snapshot()
	if len(snapshot.Accounts) == 0 {
		s.msgs.Info("No accounts to export.")
		return "", appErrors.Clone(appErrors.ErrValidation, "no accounts loaded")
	}
	dataset := listingDataset(snapshot.AccountType, snapshot.Accounts)

	var payload []byte
	var err error
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.msgs.Error("Export failed. Please try again.")
		return "", err
	}

	path, err := s.exports.Save(storage.Filename("accounts", string(format)), payload)
	if err != nil {
		s.msgs.Error("Export failed. Please try again.")
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "saving export")
	}
	s.audit.Record(models.AuditActionExport, string(snapshot.AccountType), fmt.Sprintf("%d accounts to %s", len(snapshot.Accounts), path))
	s.msgs.Success(fmt.Sprintf("Exported %d accounts.", len(snapshot.Accounts)))
	return path, nil
}

// stopDebounce cancels any pending search reload.
func (s *DirectoryService) stopDebounce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// deduplicateAccounts collapses rows sharing a normalised email, keeping the
// first occurrence in input order. Emails arriving wrapped in mailto anchors
// are cleaned for display.
func deduplicateAccounts(accounts []models.Account) []models.Account {
	seen := make(map[string]struct{}, len(accounts))
	out := make([]models.Account, 0, len(accounts))
	for _, account := range accounts {
		key := emailaddr.Normalize(account.Email)
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			account.Email = emailaddr.Extract(account.Email)
		}
		out = append(out, account)
	}
	return out
}

func listingDataset(t models.AccountType, accounts []models.Account) export.Dataset {
	if t == models.AccountTypeStaff {
		rows := make([]map[string]string, 0, len(accounts))
		for _, a := range accounts {
			rows = append(rows, map[string]string{
				"Email":      a.Email,
				"First Name": a.FirstName,
				"Last Name":  a.LastName,
				"Subject":    a.Subject,
				"Department": a.Department,
			})
		}
		return export.Dataset{
			Title:   "Staff Accounts",
			Headers: []string{"Email", "First Name", "Last Name", "Subject", "Department"},
			Rows:    rows,
		}
	}
	rows := make([]map[string]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, map[string]string{
			"Email":       a.Email,
			"First Name":  a.FirstName,
			"Last Name":   a.LastName,
			"Year Group":  a.YearGroup,
			"Tutor Group": a.TutorGroup,
			"Gender":      a.Gender,
			"UPN":         a.UPN,
		})
	}
	return export.Dataset{
		Title:   "Student Accounts",
		Headers: []string{"Email", "First Name", "Last Name", "Year Group", "Tutor Group", "Gender", "UPN"},
		Rows:    rows,
	}
}
