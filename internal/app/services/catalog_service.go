package services

import (
	"github.com/archivest/retain-core/internal/app/errors"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/infrastructures"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService manages the static reference data: legal citations and the
// record series that aggregate them.
type CatalogService struct {
	db           *gorm.DB
	validator    *infrastructures.Validator
	auditService *AuditService
}

func NewCatalogService(db *gorm.DB, validator *infrastructures.Validator, auditService *AuditService) *CatalogService {
	s := &CatalogService{
		db:           db,
		validator:    validator,
		auditService: auditService,
	}

	auditService.RegisterResolver(TargetLegalCitation, func(id uuid.UUID) (string, error) {
		var citation models.LegalCitation
		if err := db.Select("code", "title").First(&citation, "id = ?", id).Error; err != nil {
			return "", err
		}
		return citation.Code + " " + citation.Title, nil
	})
	auditService.RegisterResolver(TargetRecordSeries, func(id uuid.UUID) (string, error) {
		var series models.RecordSeries
		if err := db.Select("code", "name").First(&series, "id = ?", id).Error; err != nil {
			return "", err
		}
		return series.Code + " " + series.Name, nil
	})

	return s
}

func (s *CatalogService) CreateCitation(dto *models.LegalCitationCreateDto, actor string) (*models.LegalCitation, error) {
	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}
	if dto.RetentionUnit != models.RetentionUnitPermanent && dto.RetentionValue <= 0 {
		return nil, errors.NewValidationError("Retention value must be positive for non-permanent retention")
	}

	citation := &models.LegalCitation{
		Code:           dto.Code,
		Title:          dto.Title,
		LawReference:   dto.LawReference,
		Section:        dto.Section,
		Jurisdiction:   dto.Jurisdiction,
		RetentionValue: dto.RetentionValue,
		RetentionUnit:  dto.RetentionUnit,
		Description:    dto.Description,
	}

	if err := s.db.Create(citation).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create legal citation")
	}

	s.auditService.Record(actor, models.AuditEventCreate, TargetLegalCitation, citation.ID,
		"Created legal citation "+citation.Code)

	return citation, nil
}

func (s *CatalogService) GetCitation(id string) (*models.LegalCitation, error) {
	citationID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.NewValidationError("Invalid citation ID format")
	}

	var citation models.LegalCitation
	if err := s.db.First(&citation, "id = ?", citationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Legal citation not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get legal citation")
	}
	return &citation, nil
}

func (s *CatalogService) GetCitations() ([]models.LegalCitation, error) {
	var citations []models.LegalCitation
	if err := s.db.Order("code ASC").Find(&citations).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list legal citations")
	}
	return citations, nil
}

// UpdateCitation modifies a citation. A citation referenced by a series with
// an activated policy version is immutable.
func (s *CatalogService) UpdateCitation(id string, dto *models.LegalCitationUpdateDto, actor string) (*models.LegalCitation, error) {
	citation, err := s.GetCitation(id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}

	referenced, err := s.citationReferencedByPublishedPolicy(citation.ID)
	if err != nil {
		return nil, err
	}
	if referenced {
		return nil, errors.NewValidationError("Citation is referenced by a published policy version and cannot be changed")
	}

	if dto.Title != nil {
		citation.Title = *dto.Title
	}
	if dto.LawReference != nil {
		citation.LawReference = *dto.LawReference
	}
	if dto.Section != nil {
		citation.Section = *dto.Section
	}
	if dto.Jurisdiction != nil {
		citation.Jurisdiction = *dto.Jurisdiction
	}
	if dto.RetentionValue != nil {
		citation.RetentionValue = *dto.RetentionValue
	}
	if dto.RetentionUnit != nil {
		citation.RetentionUnit = *dto.RetentionUnit
	}
	if dto.Description != nil {
		citation.Description = dto.Description
	}

	if err := s.db.Save(citation).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update legal citation")
	}

	s.auditService.Record(actor, models.AuditEventUpdate, TargetLegalCitation, citation.ID,
		"Updated legal citation "+citation.Code)

	return citation, nil
}

func (s *CatalogService) citationReferencedByPublishedPolicy(citationID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.RetentionPolicyVersion{}).
		Joins("JOIN retention_policies ON retention_policies.id = retention_policy_versions.policy_id").
		Joins("JOIN record_series_citations ON record_series_citations.record_series_id = retention_policies.record_series_id").
		Where("record_series_citations.legal_citation_id = ?", citationID).
		Where("retention_policy_versions.state <> ?", models.PolicyVersionStateDraft).
		Count(&count).Error
	if err != nil {
		return false, errors.NewInternalServerError(err, "Failed to check citation references")
	}
	return count > 0, nil
}

func (s *CatalogService) CreateRecordSeries(dto *models.RecordSeriesCreateDto, actor string) (*models.RecordSeries, error) {
	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}

	var customerID *uuid.UUID
	if dto.CustomerID != nil {
		parsed, err := uuid.Parse(*dto.CustomerID)
		if err != nil {
			return nil, errors.NewValidationError("Invalid customer ID format")
		}
		customerID = &parsed
	}

	var citations []models.LegalCitation
	if len(dto.CitationIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(dto.CitationIDs))
		for _, raw := range dto.CitationIDs {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				return nil, errors.NewValidationError("Invalid citation ID format")
			}
			ids = append(ids, parsed)
		}
		if err := s.db.Find(&citations, "id IN ?", ids).Error; err != nil {
			return nil, errors.NewInternalServerError(err, "Failed to load citations")
		}
		if len(citations) != len(ids) {
			return nil, errors.NewNotFoundError("One or more citations not found")
		}
	}

	series := &models.RecordSeries{
		Code:                  dto.Code,
		Name:                  dto.Name,
		CustomerID:            customerID,
		DispositionMethod:     dto.DispositionMethod,
		DefaultRetentionValue: dto.DefaultRetentionValue,
		DefaultRetentionUnit:  dto.DefaultRetentionUnit,
		Category:              dto.Category,
		Citations:             citations,
	}

	if err := s.db.Create(series).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create record series")
	}

	s.auditService.Record(actor, models.AuditEventCreate, TargetRecordSeries, series.ID,
		"Created record series "+series.Code)

	return series, nil
}

func (s *CatalogService) GetRecordSeries(id string) (*models.RecordSeries, error) {
	seriesID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.NewValidationError("Invalid record series ID format")
	}

	var series models.RecordSeries
	if err := s.db.Preload("Citations").First(&series, "id = ?", seriesID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Record series not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get record series")
	}
	return &series, nil
}

func (s *CatalogService) ListRecordSeries() ([]models.RecordSeries, error) {
	var series []models.RecordSeries
	if err := s.db.Preload("Citations").Order("code ASC").Find(&series).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list record series")
	}
	return series, nil
}
