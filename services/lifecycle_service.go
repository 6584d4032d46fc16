package services

import (
	"errors"
	"time"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/dto"
	"github.com/atelierworks/atelier-backend/logger"
	"github.com/atelierworks/atelier-backend/metrics"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LifecycleService implements the project lifecycle transitions: creation
// with phase scaffolding, pipeline→production conversion and archival. Every
// transition is a sequence of single-table writes; multi-table consistency
// comes from ordering plus recorded compensation, not from a distributed
// transaction.
//
// Failure policy: the primary entity's existence is the success criterion.
// Secondary writes (phase scaffolding) degrade to warnings on the result;
// failures on the primary chain compensate the steps already committed.
type LifecycleService struct {
	db    *gorm.DB
	alloc *SequenceAllocator
	log   *zap.Logger
}

// NewLifecycleService creates a lifecycle orchestrator
func NewLifecycleService(db *gorm.DB, alloc *SequenceAllocator) *LifecycleService {
	return &LifecycleService{db: db, alloc: alloc, log: logger.Get()}
}

// Create inserts a new pipeline or production project, allocating its number
// and scaffolding phases from the tenant's template. Phase scaffolding is
// best-effort: a created root with missing phases is reported as success with
// warnings, never rolled back.
func (s *LifecycleService) Create(p dto.Principal, req dto.ProjectCreateRequest) (dto.LifecycleResult, error) {
	state := models.ProjectState(req.State)
	kind, err := sequenceKindFor(state)
	if err != nil {
		return dto.LifecycleResult{}, err
	}

	project := models.Project{
		TenantID:    p.TenantID,
		Name:        req.Name,
		Description: req.Description,
		State:       state,
		ClientID:    req.ClientID,
		DueDate:     req.DueDate,
	}

	_, err = s.alloc.Allocate(p.TenantID, kind, func(number string) error {
		project.Number = number
		return s.db.Create(&project).Error
	})
	if err != nil {
		metrics.LifecycleTransitionsTotal.WithLabelValues("create", string(apperr.CodeOf(err))).Inc()
		return dto.LifecycleResult{}, err
	}

	warnings := s.scaffoldPhases(&project, nil)

	metrics.LifecycleTransitionsTotal.WithLabelValues("create", "ok").Inc()
	return dto.LifecycleResult{Project: project, Warnings: warnings}, nil
}

// Convert turns a pipeline project into a production project: new number,
// new row with a back-reference, production phases, file reassignment, then
// removal of the pipeline row and its phases. The pipeline row is deleted
// only after everything it owned has moved; mid-sequence failures run the
// recorded undo actions in reverse so no files are orphaned.
func (s *LifecycleService) Convert(p dto.Principal, id uuid.UUID) (dto.LifecycleResult, error) {
	var src models.Project
	err := s.db.Where("tenant_id = ? AND id = ? AND state = ?", p.TenantID, id, models.StatePipeline).First(&src).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.LifecycleResult{}, apperr.New(apperr.CodeNotFound, "pipeline project not found")
	}
	if err != nil {
		return dto.LifecycleResult{}, apperr.Wrap(apperr.CodeUpstream, "could not load pipeline project", err)
	}

	sg := newSaga(s.log)
	fail := func(step string, cause error) (dto.LifecycleResult, error) {
		sg.compensate()
		metrics.LifecycleTransitionsTotal.WithLabelValues("convert", "failed").Inc()
		if cause == nil {
			return dto.LifecycleResult{}, apperr.Newf(apperr.CodeUpstream, "conversion failed at %s", step)
		}
		var coded *apperr.Error
		if errors.As(cause, &coded) {
			return dto.LifecycleResult{}, apperr.Wrap(coded.Code, "conversion failed at "+step, cause)
		}
		return dto.LifecycleResult{}, apperr.Wrap(apperr.CodeUpstream, "conversion failed at "+step, cause)
	}

	production := models.Project{
		TenantID:    src.TenantID,
		Name:        src.Name,
		Description: src.Description,
		State:       models.StateProduction,
		ClientID:    src.ClientID,
		DueDate:     src.DueDate,
		PipelineID:  &src.ID,
	}

	_, err = s.alloc.Allocate(p.TenantID, SequenceProduction, func(number string) error {
		production.Number = number
		return s.db.Create(&production).Error
	})
	if err != nil {
		return fail("production insert", err)
	}
	sg.record("insert_production", func() error {
		return s.db.Unscoped().Where("id = ?", production.ID).Delete(&models.Project{}).Error
	})

	warnings := s.scaffoldPhases(&production, sg)

	res := s.db.Model(&models.ProjectFile{}).
		Where("tenant_id = ? AND project_id = ?", p.TenantID, src.ID).
		Update("project_id", production.ID)
	if res.Error != nil {
		return fail("file reassignment", res.Error)
	}
	sg.record("reassign_files", func() error {
		return s.db.Model(&models.ProjectFile{}).
			Where("tenant_id = ? AND project_id = ?", p.TenantID, production.ID).
			Update("project_id", src.ID).Error
	})

	if err := s.db.Where("tenant_id = ? AND project_id = ?", p.TenantID, src.ID).Delete(&models.Phase{}).Error; err != nil {
		return fail("pipeline phase delete", err)
	}
	sg.record("delete_pipeline_phases", func() error {
		return s.db.Unscoped().Model(&models.Phase{}).
			Where("tenant_id = ? AND project_id = ?", p.TenantID, src.ID).
			Update("deleted_at", nil).Error
	})

	if err := s.db.Where("tenant_id = ? AND id = ?", p.TenantID, src.ID).Delete(&models.Project{}).Error; err != nil {
		return fail("pipeline delete", err)
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("convert", "ok").Inc()
	return dto.LifecycleResult{Project: production, Warnings: warnings}, nil
}

// Archive copies a production project and its phases, materials and files
// into the immutable archive tables, then deletes the live graph
// deepest-children-first. The live rows are touched only after every copy
// succeeded; a failure during the copy phase compensates the archive rows
// written so far. A failure during the delete phase leaves the archive in
// place and reports which step stopped, so the remaining live rows can be
// cleaned up by retrying.
func (s *LifecycleService) Archive(p dto.Principal, id uuid.UUID, archiveType models.ArchiveType) (dto.ArchiveResult, error) {
	if archiveType != models.ArchiveCompleted && archiveType != models.ArchiveFailed {
		return dto.ArchiveResult{}, apperr.Newf(apperr.CodeInvalid, "unknown archive type %q", archiveType)
	}

	var src models.Project
	err := s.db.Where("tenant_id = ? AND id = ?", p.TenantID, id).First(&src).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ArchiveResult{}, apperr.New(apperr.CodeNotFound, "project not found")
	}
	if err != nil {
		return dto.ArchiveResult{}, apperr.Wrap(apperr.CodeUpstream, "could not load project", err)
	}
	if src.State != models.StateProduction {
		return dto.ArchiveResult{}, apperr.New(apperr.CodeInvalid, "only production projects can be archived")
	}

	var phases []models.Phase
	var materials []models.Material
	var files []models.ProjectFile
	if err := s.db.Where("tenant_id = ? AND project_id = ?", p.TenantID, src.ID).Find(&phases).Error; err != nil {
		return dto.ArchiveResult{}, apperr.Wrap(apperr.CodeUpstream, "could not load phases", err)
	}
	if err := s.db.Where("tenant_id = ? AND project_id = ?", p.TenantID, src.ID).Find(&materials).Error; err != nil {
		return dto.ArchiveResult{}, apperr.Wrap(apperr.CodeUpstream, "could not load materials", err)
	}
	if err := s.db.Where("tenant_id = ? AND project_id = ?", p.TenantID, src.ID).Find(&files).Error; err != nil {
		return dto.ArchiveResult{}, apperr.Wrap(apperr.CodeUpstream, "could not load files", err)
	}

	sg := newSaga(s.log)
	fail := func(step string, cause error) (dto.ArchiveResult, error) {
		sg.compensate()
		metrics.LifecycleTransitionsTotal.WithLabelValues("archive", "failed").Inc()
		return dto.ArchiveResult{}, apperr.Wrap(apperr.CodeUpstream, "archival failed at "+step, cause)
	}

	archive := models.ArchivedProject{
		TenantID:    src.TenantID,
		OriginalID:  src.ID,
		Number:      src.Number,
		Name:        src.Name,
		Description: src.Description,
		ClientID:    src.ClientID,
		ArchiveType: archiveType,
		ArchivedAt:  time.Now().UTC(),
	}
	if err := s.db.Create(&archive).Error; err != nil {
		return fail("archive insert", err)
	}
	sg.record("insert_archive", func() error {
		return s.db.Where("id = ?", archive.ID).Delete(&models.ArchivedProject{}).Error
	})

	for _, ph := range phases {
		copied := models.ArchivedPhase{
			ArchiveID: archive.ID,
			TenantID:  ph.TenantID,
			PhaseKey:  ph.PhaseKey,
			Status:    ph.Status,
			Position:  ph.Position,
		}
		if err := s.db.Create(&copied).Error; err != nil {
			return fail("phase copy", err)
		}
	}
	sg.record("copy_phases", func() error {
		return s.db.Where("archive_id = ?", archive.ID).Delete(&models.ArchivedPhase{}).Error
	})

	for _, m := range materials {
		copied := models.ArchivedMaterial{
			ArchiveID: archive.ID,
			TenantID:  m.TenantID,
			Name:      m.Name,
			Quantity:  m.Quantity,
			Unit:      m.Unit,
		}
		if err := s.db.Create(&copied).Error; err != nil {
			return fail("material copy", err)
		}
	}
	sg.record("copy_materials", func() error {
		return s.db.Where("archive_id = ?", archive.ID).Delete(&models.ArchivedMaterial{}).Error
	})

	for _, f := range files {
		copied := models.ArchivedFile{
			ArchiveID:   archive.ID,
			TenantID:    f.TenantID,
			Name:        f.Name,
			Path:        f.Path,
			Size:        f.Size,
			ContentType: f.ContentType,
		}
		if err := s.db.Create(&copied).Error; err != nil {
			return fail("file copy", err)
		}
	}
	sg.record("copy_files", func() error {
		return s.db.Where("archive_id = ?", archive.ID).Delete(&models.ArchivedFile{}).Error
	})

	if err := s.cascadeDelete(p.TenantID, src.ID); err != nil {
		metrics.LifecycleTransitionsTotal.WithLabelValues("archive", "partial_delete").Inc()
		return dto.ArchiveResult{Archive: archive}, err
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("archive", "ok").Inc()
	return dto.ArchiveResult{Archive: archive}, nil
}

// Delete removes a project and every dependent row without archiving.
// Irreversible.
func (s *LifecycleService) Delete(p dto.Principal, id uuid.UUID) error {
	var src models.Project
	err := s.db.Where("tenant_id = ? AND id = ?", p.TenantID, id).First(&src).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.CodeNotFound, "project not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "could not load project", err)
	}

	if err := s.cascadeDelete(p.TenantID, src.ID); err != nil {
		metrics.LifecycleTransitionsTotal.WithLabelValues("delete", "failed").Inc()
		return err
	}
	metrics.LifecycleTransitionsTotal.WithLabelValues("delete", "ok").Inc()
	return nil
}

// cascadeDelete removes a project's dependents deepest-children-first, then
// the root. The order mirrors the foreign-key graph: deleting a referenced
// parent before its children would trip constraints on stores that enforce
// them.
func (s *LifecycleService) cascadeDelete(tenantID, projectID uuid.UUID) error {
	children := []struct {
		step  string
		model interface{}
	}{
		{"spray items", &models.SprayItem{}},
		{"spray settings", &models.SpraySetting{}},
		{"elements", &models.Element{}},
		{"files", &models.ProjectFile{}},
		{"materials", &models.Material{}},
		{"phases", &models.Phase{}},
		{"blockers", &models.Blocker{}},
		{"alerts", &models.Alert{}},
	}
	for _, c := range children {
		if err := s.db.Where("tenant_id = ? AND project_id = ?", tenantID, projectID).Delete(c.model).Error; err != nil {
			return apperr.Wrap(apperr.CodeUpstream, "cascade delete failed at "+c.step, err)
		}
	}
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, projectID).Delete(&models.Project{}).Error; err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "cascade delete failed at project root", err)
	}
	return nil
}

// scaffoldPhases copies the tenant's template entries onto a project as
// notStarted phases. Failures degrade to warnings; when a saga is supplied
// the created phases still register an undo so a later primary failure can
// remove them.
func (s *LifecycleService) scaffoldPhases(project *models.Project, sg *saga) []dto.Warning {
	var tmpl []models.CustomPhase
	err := s.db.Where("tenant_id = ? AND phase_type = ?", project.TenantID, project.State).
		Order("position ASC").Find(&tmpl).Error
	if err != nil {
		s.log.Warn("phase template fetch failed",
			zap.String("project", project.ID.String()),
			zap.Error(err))
		return []dto.Warning{{Step: "phase_scaffolding", Message: "could not load phase template: " + err.Error()}}
	}

	var warnings []dto.Warning
	created := 0
	for _, t := range tmpl {
		phase := models.Phase{
			TenantID:  project.TenantID,
			ProjectID: project.ID,
			PhaseKey:  t.PhaseKey,
			Status:    models.PhaseNotStarted,
			Position:  t.Position,
		}
		if err := s.db.Create(&phase).Error; err != nil {
			s.log.Warn("phase scaffolding failed",
				zap.String("project", project.ID.String()),
				zap.String("phase", t.PhaseKey),
				zap.Error(err))
			warnings = append(warnings, dto.Warning{Step: "phase_scaffolding", Message: "could not create phase " + t.PhaseKey + ": " + err.Error()})
			break
		}
		created++
	}

	if sg != nil && created > 0 {
		projectID := project.ID
		sg.record("scaffold_phases", func() error {
			return s.db.Unscoped().Where("project_id = ?", projectID).Delete(&models.Phase{}).Error
		})
	}
	return warnings
}

// sequenceKindFor maps a target state to its number sequence
func sequenceKindFor(state models.ProjectState) (SequenceKind, error) {
	switch state {
	case models.StatePipeline:
		return SequencePipeline, nil
	case models.StateProduction:
		return SequenceProduction, nil
	default:
		return "", apperr.Newf(apperr.CodeInvalid, "unknown project state %q", state)
	}
}
