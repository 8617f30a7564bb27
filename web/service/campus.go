package service

import (
	"strings"

	"gorm.io/gorm"

	"github.com/usjp/campus-panel/database"
	"github.com/usjp/campus-panel/database/model"
)

// CampusService is the record store for the zone / building / division
// hierarchy and assistant assignment.
type CampusService struct {
	DB          *gorm.DB
	Credentials *CredentialService
}

func NewCampusService(credentials *CredentialService) *CampusService {
	return &CampusService{DB: credentials.DB, Credentials: credentials}
}

// ListZones returns every zone with its buildings and divisions.
func (s *CampusService) ListZones() ([]model.Zone, error) {
	var zones []model.Zone
	err := s.DB.Preload("Buildings", func(db *gorm.DB) *gorm.DB {
		return db.Order("buildings.name ASC")
	}).
		Preload("Buildings.Divisions").
		Order("name ASC").
		Find(&zones).
		Error
	return zones, err
}

func (s *CampusService) CreateZone(zone *model.Zone) error {
	zone.Name = strings.TrimSpace(zone.Name)
	if zone.Name == "" {
		return invalid("name", RuleInvalidForm)
	}
	return translateCreate(s.DB.Create(zone).Error)
}

func (s *CampusService) CreateBuilding(building *model.Building) error {
	building.Name = strings.TrimSpace(building.Name)
	if building.Name == "" || building.ZoneId <= 0 {
		return invalid("name", RuleInvalidForm)
	}
	if building.Floors <= 0 {
		building.Floors = 1
	}
	if err := s.exists(&model.Zone{}, building.ZoneId); err != nil {
		return err
	}
	return translateCreate(s.DB.Create(building).Error)
}

func (s *CampusService) CreateDivision(division *model.Division) error {
	division.Name = strings.TrimSpace(division.Name)
	if division.Name == "" || division.BuildingId <= 0 {
		return invalid("name", RuleInvalidForm)
	}
	if err := s.exists(&model.Building{}, division.BuildingId); err != nil {
		return err
	}
	// assignment goes through AssignAssistant
	division.AssistantId = nil
	return translateCreate(s.DB.Create(division).Error)
}

// AssignAssistant sets or, with a nil assistantID, clears the assistant
// of a division. Only management assistants can be assigned.
func (s *CampusService) AssignAssistant(divisionID int, assistantID *int) (*model.Division, error) {
	division := &model.Division{}
	if err := s.DB.First(division, divisionID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if assistantID != nil {
		user, err := s.Credentials.GetUser(*assistantID)
		if err != nil {
			return nil, err
		}
		if !user.HasRole(model.RoleMA) {
			return nil, ErrTargetNotMA
		}
	}
	if err := s.DB.Model(division).Update("assistant_id", assistantID).Error; err != nil {
		return nil, err
	}
	division.AssistantId = assistantID
	return division, nil
}

// DivisionsOf lists the divisions assigned to an assistant.
func (s *CampusService) DivisionsOf(assistantID int) ([]model.Division, error) {
	var divisions []model.Division
	err := s.DB.Where("assistant_id = ?", assistantID).
		Order("id ASC").
		Find(&divisions).
		Error
	return divisions, err
}

func (s *CampusService) exists(m any, id int) error {
	var count int64
	if err := s.DB.Model(m).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func translateCreate(err error) error {
	if database.IsDuplicateKey(err) {
		return invalid("name", RuleNameTaken)
	}
	return err
}
