package console

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/state"
)

type uploadClient interface {
	ValidateUpload(ctx context.Context, kind models.UploadKind, req dto.UploadRequest) ([]string, error)
	ProcessUpload(ctx context.Context, kind models.UploadKind, req dto.UploadRequest) (string, string, error)
}

// UploadConfig identifies the uploader on onboarding payloads and carries
// the configured option defaults.
type UploadConfig struct {
	UserID            string
	UserEmail         string
	Percentile        string
	SendNotifications bool
	NotificationEmail string
}

// UploadService feeds parsed spreadsheets through the onboarding pipeline:
// validate first, process only what validated. Manual single-account adds
// travel the same path as a one-row upload.
type UploadService struct {
	client   uploadClient
	store    *state.Store
	msgs     *MessageCenter
	audit    *AuditService
	tracker  *Tracker
	metrics  *MetricsService
	validate *validator.Validate
	cfg      UploadConfig
	logger   *zap.Logger

	busy atomic.Bool
}

// NewUploadService constructs the upload service.
func NewUploadService(client uploadClient, store *state.Store, msgs *MessageCenter, audit *AuditService, tracker *Tracker, metrics *MetricsService, validate *validator.Validate, cfg UploadConfig, logger *zap.Logger) *UploadService {
	if validate == nil {
		validate = validator.New()
	}
	if cfg.Percentile == "" {
		cfg.Percentile = "75"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{
		client:   client,
		store:    store,
		msgs:     msgs,
		audit:    audit,
		tracker:  tracker,
		metrics:  metrics,
		validate: validate,
		cfg:      cfg,
		logger:   logger,
	}
}

// ParseCSV reads an RFC 4180 spreadsheet into header-keyed rows. Quoted
// fields keep embedded commas, quotes and newlines; blank rows are dropped.
func (s *UploadService) ParseCSV(r io.Reader) (*models.RowSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not parse the CSV file")
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "the file is empty")
	}
	return rowSetFromRecords(records[0], records[1:])
}

// ParseWorkbook reads the first sheet of an XLSX workbook into the same row
// model as ParseCSV, so MIS exports need no conversion step.
func (s *UploadService) ParseWorkbook(r io.Reader) (*models.RowSet, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not open the workbook")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "the workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not read the workbook")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "the first sheet is empty")
	}
	return rowSetFromRecords(rows[0], rows[1:])
}

// Validate submits rows for server-side validation without enqueueing them.
// The returned slice carries the server's row problems verbatim; empty means
// the batch may be processed.
func (s *UploadService) Validate(ctx context.Context, kind models.UploadKind, rows *models.RowSet) ([]string, error) {
	if rows.Len() == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no rows to upload")
	}

	issues, err := s.client.ValidateUpload(ctx, kind, s.buildRequest(rows, models.UploadOptions{}))
	if err != nil {
		s.msgs.Error(surfaceText(err))
		return nil, err
	}
	if len(issues) > 0 {
		s.msgs.Warning(fmt.Sprintf("Validation found %d problems.", len(issues)))
		return issues, nil
	}
	s.msgs.Success(fmt.Sprintf("%d rows passed validation.", rows.Len()))
	return nil, nil
}

// Process validates and then enqueues the rows. A non-empty issues slice
// means validation refused the batch and nothing was submitted. Only one
// batch may be in flight at a time.
func (s *UploadService) Process(ctx context.Context, kind models.UploadKind, rows *models.RowSet, opts models.UploadOptions) ([]string, error) {
	if rows.Len() == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no rows to upload")
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, appErrors.Clone(appErrors.ErrBusy, "an upload is already being processed")
	}
	defer s.busy.Store(false)

	req := s.buildRequest(rows, opts)

	issues, err := s.client.ValidateUpload(ctx, kind, req)
	if err != nil {
		s.msgs.Error(surfaceText(err))
		return nil, err
	}
	if len(issues) > 0 {
		s.msgs.Warning(fmt.Sprintf("Validation found %d problems.", len(issues)))
		return issues, nil
	}

	jobID, message, err := s.client.ProcessUpload(ctx, kind, req)
	if err != nil {
		s.msgs.Error(surfaceText(err))
		return nil, err
	}

	s.metrics.RecordUploadProcessed()
	action := models.AuditActionUploadProcess
	if opts.ManualEntry {
		action = models.AuditActionManualAdd
	}
	s.audit.Record(action, string(kind), fmt.Sprintf("%d rows", rows.Len()))

	if jobID != "" {
		s.tracker.Register(models.JobTypeUpload, jobID, rows.Len())
		s.msgs.Info(fmt.Sprintf("Upload of %d rows queued.", rows.Len()))
		return nil, nil
	}
	if message == "" {
		message = fmt.Sprintf("Processed %d rows.", rows.Len())
		if opts.ManualEntry {
			message = "Account added."
		}
	}
	s.msgs.Success(message)
	return nil, nil
}

// ManualAdd creates one account by hand through the onboarding pipeline,
// marked as a manual entry so the server skips batch-only checks.
func (s *UploadService) ManualAdd(ctx context.Context, kind models.UploadKind, entry models.ManualEntry) error {
	if err := s.validate.Struct(entry); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "first name, last name and a valid email are required")
	}

	opts := s.DefaultOptions()
	opts.ManualEntry = true
	issues, err := s.Process(ctx, kind, manualRowSet(kind, entry), opts)
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, strings.Join(issues, "; "))
	}
	return nil
}

// DefaultOptions returns the configured onboarding options, ready for the
// caller to adjust per batch.
func (s *UploadService) DefaultOptions() models.UploadOptions {
	return models.UploadOptions{
		SendNotifications: s.cfg.SendNotifications,
		NotificationEmail: s.cfg.NotificationEmail,
		Percentile:        s.cfg.Percentile,
	}
}

func (s *UploadService) buildRequest(rows *models.RowSet, opts models.UploadOptions) dto.UploadRequest {
	if opts.Percentile == "" {
		opts.Percentile = s.cfg.Percentile
	}
	session := s.store.Snapshot().Session
	customerID := ""
	if session.Context != nil {
		customerID = session.Context.CustomerID
	}
	return dto.UploadRequest{
		CSVData: rows.Records,
		Options: dto.UploadOptionsPayload{
			SendNotifications: opts.SendNotifications,
			NotificationEmail: opts.NotificationEmail,
			Percentile:        opts.Percentile,
			ManualEntry:       opts.ManualEntry,
		},
		Context: dto.UploadContextPayload{
			UserID:           s.cfg.UserID,
			UserEmail:        s.cfg.UserEmail,
			CustomerID:       customerID,
			EmulatedSchoolID: session.ResolvedSchoolID(),
		},
	}
}

// rowSetFromRecords keys each data row by the header row, trimming cells and
// dropping rows with no values at all. Rows shorter than the header are
// padded with empties so every record carries every column.
func rowSetFromRecords(headers []string, rows [][]string) (*models.RowSet, error) {
	cleaned := make([]string, len(headers))
	named := make([]string, 0, len(headers))
	for i, h := range headers {
		cleaned[i] = strings.TrimSpace(h)
		if cleaned[i] != "" {
			named = append(named, cleaned[i])
		}
	}
	if len(named) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "the header row is empty")
	}

	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]string, len(named))
		empty := true
		for i, header := range cleaned {
			if header == "" {
				continue
			}
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			if value != "" {
				empty = false
			}
			record[header] = value
		}
		if empty {
			continue
		}
		records = append(records, record)
	}
	return &models.RowSet{Headers: named, Records: records}, nil
}

func manualRowSet(kind models.UploadKind, entry models.ManualEntry) *models.RowSet {
	if kind == models.UploadKindStaff {
		return &models.RowSet{
			Headers: []string{"Firstname", "Lastname", "Staff Email", "Subject", "Department"},
			Records: []map[string]string{{
				"Firstname":   entry.FirstName,
				"Lastname":    entry.LastName,
				"Staff Email": entry.Email,
				"Subject":     entry.Subject,
				"Department":  entry.Department,
			}},
		}
	}
	return &models.RowSet{
		Headers: []string{"Firstname", "Lastname", "Student Email", "Year Gp", "Group", "Gender", "UPN"},
		Records: []map[string]string{{
			"Firstname":     entry.FirstName,
			"Lastname":      entry.LastName,
			"Student Email": entry.Email,
			"Year Gp":       entry.YearGroup,
			"Group":         entry.TutorGroup,
			"Gender":        entry.Gender,
			"UPN":           entry.UPN,
		}},
	}
}
