package core

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"obracore/internal/blob"
	"obracore/pkg/domain"
)

// CreateSiteLog persists a site log.
func (s *Service) CreateSiteLog(ctx context.Context, log SiteLog) (SiteLog, Result, error) {
	var created SiteLog
	res, err := s.transact(ctx, "create_site_log", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateSiteLog(log)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateSiteLog mutates a site log using the provided mutator.
func (s *Service) UpdateSiteLog(ctx context.Context, id string, mutator func(*SiteLog) error) (SiteLog, Result, error) {
	var updated SiteLog
	res, err := s.transact(ctx, "update_site_log", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateSiteLog(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteSiteLog removes a site log record.
func (s *Service) DeleteSiteLog(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_site_log", func(tx domain.Transaction) error {
		return tx.DeleteSiteLog(id)
	}, func() string { return id })
}

// ListSiteLogs returns all site logs, newest first.
func (s *Service) ListSiteLogs(ctx context.Context) ([]SiteLog, error) {
	var out []SiteLog
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListSiteLogs()
		return nil
	})
	return sortByCreation(out, func(l SiteLog) Base { return l.Base }), err
}

// ListSiteLogsByProject returns a project's site logs, newest first.
func (s *Service) ListSiteLogsByProject(ctx context.Context, projectID string) ([]SiteLog, error) {
	var out []SiteLog
	err := s.read(ctx, func(v domain.TransactionView) error {
		for _, log := range v.ListSiteLogs() {
			if log.ProjectID == projectID {
				out = append(out, log)
			}
		}
		return nil
	})
	return sortByCreation(out, func(l SiteLog) Base { return l.Base }), err
}

// GetSiteLog returns a site log by id.
func (s *Service) GetSiteLog(ctx context.Context, id string) (SiteLog, error) {
	var out SiteLog
	err := s.read(ctx, func(v domain.TransactionView) error {
		log, ok := v.FindSiteLog(id)
		if !ok {
			return ErrNotFound{Entity: EntitySiteLog, ID: id}
		}
		out = log
		return nil
	})
	return out, err
}

// CreateSiteLogTask persists a site log progress entry.
func (s *Service) CreateSiteLogTask(ctx context.Context, task SiteLogTask) (SiteLogTask, Result, error) {
	var created SiteLogTask
	res, err := s.transact(ctx, "create_site_log_task", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateSiteLogTask(task)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateSiteLogTask mutates a site log progress entry.
func (s *Service) UpdateSiteLogTask(ctx context.Context, id string, mutator func(*SiteLogTask) error) (SiteLogTask, Result, error) {
	var updated SiteLogTask
	res, err := s.transact(ctx, "update_site_log_task", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateSiteLogTask(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteSiteLogTask removes a site log progress entry.
func (s *Service) DeleteSiteLogTask(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_site_log_task", func(tx domain.Transaction) error {
		return tx.DeleteSiteLogTask(id)
	}, func() string { return id })
}

// ListSiteLogTasks returns all site log progress entries, newest first.
func (s *Service) ListSiteLogTasks(ctx context.Context) ([]SiteLogTask, error) {
	var out []SiteLogTask
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListSiteLogTasks()
		return nil
	})
	return sortByCreation(out, func(t SiteLogTask) Base { return t.Base }), err
}

// CreateSiteLogAttendee persists an attendance record.
func (s *Service) CreateSiteLogAttendee(ctx context.Context, attendee SiteLogAttendee) (SiteLogAttendee, Result, error) {
	var created SiteLogAttendee
	res, err := s.transact(ctx, "create_site_log_attendee", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateSiteLogAttendee(attendee)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateSiteLogAttendee mutates an attendance record.
func (s *Service) UpdateSiteLogAttendee(ctx context.Context, id string, mutator func(*SiteLogAttendee) error) (SiteLogAttendee, Result, error) {
	var updated SiteLogAttendee
	res, err := s.transact(ctx, "update_site_log_attendee", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateSiteLogAttendee(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteSiteLogAttendee removes an attendance record.
func (s *Service) DeleteSiteLogAttendee(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_site_log_attendee", func(tx domain.Transaction) error {
		return tx.DeleteSiteLogAttendee(id)
	}, func() string { return id })
}

// ListSiteLogAttendees returns all attendance records, newest first.
func (s *Service) ListSiteLogAttendees(ctx context.Context) ([]SiteLogAttendee, error) {
	var out []SiteLogAttendee
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListSiteLogAttendees()
		return nil
	})
	return sortByCreation(out, func(a SiteLogAttendee) Base { return a.Base }), err
}

// CreateSiteLogFile persists a file record whose payload already lives in the
// blob store.
func (s *Service) CreateSiteLogFile(ctx context.Context, file SiteLogFile) (SiteLogFile, Result, error) {
	var created SiteLogFile
	res, err := s.transact(ctx, "create_site_log_file", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateSiteLogFile(file)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// DeleteSiteLogFile removes a file record and, when a blob store is attached,
// its payload.
func (s *Service) DeleteSiteLogFile(ctx context.Context, id string) (Result, error) {
	var blobKey string
	res, err := s.transact(ctx, "delete_site_log_file", func(tx domain.Transaction) error {
		file, ok := tx.Snapshot().FindSiteLogFile(id)
		if !ok {
			return ErrNotFound{Entity: EntitySiteLogFile, ID: id}
		}
		blobKey = file.BlobKey
		return tx.DeleteSiteLogFile(id)
	}, func() string { return id })
	if err == nil && s.blobs != nil && blobKey != "" {
		if _, delErr := s.blobs.Delete(ctx, blobKey); delErr != nil {
			s.logger.Warn("orphaned blob after file delete", "key", blobKey, "error", delErr)
		}
	}
	return res, err
}

// ListSiteLogFiles returns all file records, newest first.
func (s *Service) ListSiteLogFiles(ctx context.Context) ([]SiteLogFile, error) {
	var out []SiteLogFile
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListSiteLogFiles()
		return nil
	})
	return sortByCreation(out, func(f SiteLogFile) Base { return f.Base }), err
}

// OpenSiteLogFile returns the file record and a reader over its blob payload.
func (s *Service) OpenSiteLogFile(ctx context.Context, id string) (SiteLogFile, []byte, error) {
	var file SiteLogFile
	err := s.read(ctx, func(v domain.TransactionView) error {
		f, ok := v.FindSiteLogFile(id)
		if !ok {
			return ErrNotFound{Entity: EntitySiteLogFile, ID: id}
		}
		file = f
		return nil
	})
	if err != nil {
		return SiteLogFile{}, nil, err
	}
	if s.blobs == nil {
		return SiteLogFile{}, nil, fmt.Errorf("blob store not configured")
	}
	_, rc, err := s.blobs.Get(ctx, file.BlobKey)
	if err != nil {
		return SiteLogFile{}, nil, fmt.Errorf("read blob %s: %w", file.BlobKey, err)
	}
	defer func() { _ = rc.Close() }()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return SiteLogFile{}, nil, err
	}
	return file, buf.Bytes(), nil
}

// SiteLogTaskInput describes one progress entry of a site log bundle.
type SiteLogTaskInput struct {
	BudgetTaskID *string `json:"budget_task_id"`
	Progress     float64 `json:"progress"`
	Notes        *string `json:"notes,omitempty"`
}

// SiteLogAttendeeInput describes one attendee of a site log bundle.
type SiteLogAttendeeInput struct {
	ContactID string  `json:"contact_id"`
	Role      *string `json:"role,omitempty"`
}

// SiteLogFileInput carries an attachment payload for a site log bundle.
type SiteLogFileInput struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// SiteLogBundleInput is the full multi-step site log creation request.
type SiteLogBundleInput struct {
	ProjectID string                 `json:"project_id"`
	LogDate   time.Time              `json:"log_date"`
	Notes     *string                `json:"notes,omitempty"`
	Weather   *string                `json:"weather,omitempty"`
	Tasks     []SiteLogTaskInput     `json:"tasks"`
	Attendees []SiteLogAttendeeInput `json:"attendees"`
	Files     []SiteLogFileInput     `json:"files"`
}

// SiteLogBundle is the fully created site log with its children.
type SiteLogBundle struct {
	SiteLog   SiteLog           `json:"site_log"`
	Tasks     []SiteLogTask     `json:"tasks"`
	Attendees []SiteLogAttendee `json:"attendees"`
	Files     []SiteLogFile     `json:"files"`
}

// ErrBundleInFlight is returned when a bundle for the same project and log
// date is already being created.
type ErrBundleInFlight struct {
	ProjectID string
	LogDate   time.Time
}

func (e ErrBundleInFlight) Error() string {
	return fmt.Sprintf("site log bundle for project %s on %s already in flight", e.ProjectID, e.LogDate.Format("2006-01-02"))
}

// CreateSiteLogBundle runs the multi-step site log creation as a saga: site
// log, progress entries, attendees, then file uploads. Every completed step
// registers a compensation; on failure the compensations run in reverse order
// and the step error is returned. A second bundle for the same project and
// log date is rejected while the first is in flight.
func (s *Service) CreateSiteLogBundle(ctx context.Context, input SiteLogBundleInput) (SiteLogBundle, error) {
	key := input.ProjectID + "|" + input.LogDate.Format("2006-01-02")
	s.bundleMu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.bundleMu.Unlock()
		return SiteLogBundle{}, ErrBundleInFlight{ProjectID: input.ProjectID, LogDate: input.LogDate}
	}
	s.inflight[key] = struct{}{}
	s.bundleMu.Unlock()
	defer func() {
		s.bundleMu.Lock()
		delete(s.inflight, key)
		s.bundleMu.Unlock()
	}()

	started := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, "create_site_log_bundle")
	bundle, err := s.runSiteLogSaga(ctx, input)
	span.End(err)
	s.metrics.Observe(ctx, "create_site_log_bundle", err == nil, s.clock.Now().Sub(started))

	entry := AuditEntry{Operation: "create_site_log_bundle", Status: AuditStatusSuccess, EntityID: bundle.SiteLog.ID, OccurredAt: started}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		s.logger.Error("site log bundle failed", "project_id", input.ProjectID, "error", err)
	}
	s.audit.Record(ctx, entry)
	return bundle, err
}

func (s *Service) runSiteLogSaga(ctx context.Context, input SiteLogBundleInput) (SiteLogBundle, error) {
	if len(input.Files) > 0 && s.blobs == nil {
		return SiteLogBundle{}, fmt.Errorf("blob store not configured")
	}

	var compensations []func()
	compensate := func() {
		for i := len(compensations) - 1; i >= 0; i-- {
			compensations[i]()
		}
	}

	var bundle SiteLogBundle
	log, _, err := s.CreateSiteLog(ctx, SiteLog{
		ProjectID: input.ProjectID,
		LogDate:   input.LogDate,
		Notes:     input.Notes,
		Weather:   input.Weather,
	})
	if err != nil {
		return SiteLogBundle{}, fmt.Errorf("create site log: %w", err)
	}
	bundle.SiteLog = log
	compensations = append(compensations, func() {
		if _, err := s.DeleteSiteLog(ctx, log.ID); err != nil {
			s.logger.Warn("saga compensation failed", "entity", EntitySiteLog, "id", log.ID, "error", err)
		}
	})

	for _, in := range input.Tasks {
		task, _, err := s.CreateSiteLogTask(ctx, SiteLogTask{
			SiteLogID:    log.ID,
			BudgetTaskID: in.BudgetTaskID,
			Progress:     in.Progress,
			Notes:        in.Notes,
		})
		if err != nil {
			compensate()
			return SiteLogBundle{}, fmt.Errorf("create site log task: %w", err)
		}
		bundle.Tasks = append(bundle.Tasks, task)
		id := task.ID
		compensations = append(compensations, func() {
			if _, err := s.DeleteSiteLogTask(ctx, id); err != nil {
				s.logger.Warn("saga compensation failed", "entity", EntitySiteLogTask, "id", id, "error", err)
			}
		})
	}

	for _, in := range input.Attendees {
		attendee, _, err := s.CreateSiteLogAttendee(ctx, SiteLogAttendee{
			SiteLogID: log.ID,
			ContactID: in.ContactID,
			Role:      in.Role,
		})
		if err != nil {
			compensate()
			return SiteLogBundle{}, fmt.Errorf("create site log attendee: %w", err)
		}
		bundle.Attendees = append(bundle.Attendees, attendee)
		id := attendee.ID
		compensations = append(compensations, func() {
			if _, err := s.DeleteSiteLogAttendee(ctx, id); err != nil {
				s.logger.Warn("saga compensation failed", "entity", EntitySiteLogAttendee, "id", id, "error", err)
			}
		})
	}

	for _, in := range input.Files {
		blobKey := fmt.Sprintf("sitelogs/%s/%s", log.ID, uuid.NewString())
		opts := blob.PutOptions{
			ContentType: in.ContentType,
			Metadata:    map[string]string{"file_name": in.FileName, "site_log_id": log.ID},
		}
		if _, err := s.blobs.Put(ctx, blobKey, bytes.NewReader(in.Content), opts); err != nil {
			compensate()
			return SiteLogBundle{}, fmt.Errorf("upload file %s: %w", in.FileName, err)
		}
		uploadedKey := blobKey
		compensations = append(compensations, func() {
			if _, err := s.blobs.Delete(ctx, uploadedKey); err != nil {
				s.logger.Warn("saga compensation failed", "blob_key", uploadedKey, "error", err)
			}
		})

		file, _, err := s.CreateSiteLogFile(ctx, SiteLogFile{
			SiteLogID:   log.ID,
			BlobKey:     blobKey,
			FileName:    in.FileName,
			ContentType: in.ContentType,
			SizeBytes:   int64(len(in.Content)),
		})
		if err != nil {
			compensate()
			return SiteLogBundle{}, fmt.Errorf("register file %s: %w", in.FileName, err)
		}
		bundle.Files = append(bundle.Files, file)
		id := file.ID
		compensations = append(compensations, func() {
			if _, err := s.DeleteSiteLogFile(ctx, id); err != nil {
				s.logger.Warn("saga compensation failed", "entity", EntitySiteLogFile, "id", id, "error", err)
			}
		})
	}

	return bundle, nil
}
