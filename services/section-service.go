package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/events"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/utils"
)

type SectionService struct {
	sections  SectionStore
	auth      *Authorizer
	activity  *ActivityService
	publisher events.Publisher
}

func NewSectionService(sections SectionStore, auth *Authorizer, activity *ActivityService, publisher events.Publisher) *SectionService {
	return &SectionService{sections: sections, auth: auth, activity: activity, publisher: publisher}
}

func (s *SectionService) List(ctx context.Context, userID, projectID uuid.UUID) ([]models.Section, error) {
	if _, err := s.auth.RequireProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.sections.ListSections(ctx, projectID)
}

func (s *SectionService) Create(ctx context.Context, userID uuid.UUID, req models.CreateSectionRequest) (*models.Section, error) {
	req.Name = strings.TrimSpace(req.Name)
	var v utils.Validator
	v.Check(req.ProjectID != uuid.Nil, "project_id", "Project ID is required")
	v.Check(req.Name != "", "name", "Section name is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.auth.RequireProject(ctx, req.ProjectID, userID); err != nil {
		return nil, err
	}

	section, err := s.sections.CreateSection(ctx, req.ProjectID, req.Name)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, Entry{ProjectID: section.ProjectID, ActorID: userID, Type: models.ActivityCreateSection, Details: section.Name})
	s.publisher.Publish(events.NewEvent(events.SectionCreated, section.ProjectID, section))
	return section, nil
}

func (s *SectionService) Update(ctx context.Context, userID, id uuid.UUID, patch models.SectionPatch) (*models.Section, error) {
	var v utils.Validator
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
		v.Check(trimmed != "", "name", "Section name cannot be empty")
	}
	if patch.Position != nil {
		v.Check(*patch.Position >= 0, "position", "Position must be a non-negative integer")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperrors.BadRequest("No fields to update")
	}

	existing, err := s.sections.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.auth.RequireProject(ctx, existing.ProjectID, userID); err != nil {
		return nil, err
	}

	section, err := s.sections.UpdateSection(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(events.NewEvent(events.SectionUpdated, section.ProjectID, section))
	return section, nil
}

// Delete removes a section. moveTasks is "" (unassign), "delete", or a target section id.
func (s *SectionService) Delete(ctx context.Context, userID, id uuid.UUID, moveTasks string) error {
	disposition, err := models.ParseTaskDisposition(moveTasks)
	if err != nil {
		return apperrors.Validation(apperrors.FieldError{Field: "moveTasks", Message: "moveTasks must be a section id or \"delete\""})
	}

	existing, err := s.sections.GetSection(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.auth.RequireProjectAdmin(ctx, existing.ProjectID, userID); err != nil {
		return err
	}

	if err := s.sections.DeleteSection(ctx, id, disposition); err != nil {
		return err
	}
	s.activity.Record(ctx, Entry{ProjectID: existing.ProjectID, ActorID: userID, Type: models.ActivityDeleteSection, Details: existing.Name})
	s.publisher.Publish(events.NewEvent(events.SectionDeleted, existing.ProjectID, map[string]uuid.UUID{"id": id}))
	return nil
}
