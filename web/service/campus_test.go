package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usjp/campus-panel/database/model"
)

func (s *services) mustCreateDivision(t *testing.T, zoneName, buildingName, divisionName string) *model.Division {
	t.Helper()
	zone := &model.Zone{Name: zoneName}
	require.NoError(t, s.campus.CreateZone(zone))
	building := &model.Building{ZoneId: zone.Id, Name: buildingName}
	require.NoError(t, s.campus.CreateBuilding(building))
	division := &model.Division{BuildingId: building.Id, Name: divisionName}
	require.NoError(t, s.campus.CreateDivision(division))
	return division
}

func TestCampusHierarchy(t *testing.T) {
	s := setup(t)
	s.mustCreateDivision(t, "North", "Library", "Reading room")

	zones, err := s.campus.ListZones()
	require.NoError(t, err)
	require.Len(t, zones, 1)
	require.Len(t, zones[0].Buildings, 1)
	assert.Equal(t, 1, zones[0].Buildings[0].Floors)
	require.Len(t, zones[0].Buildings[0].Divisions, 1)
	assert.Equal(t, "Reading room", zones[0].Buildings[0].Divisions[0].Name)
}

func TestCampusCreateRejections(t *testing.T) {
	s := setup(t)

	err := s.campus.CreateZone(&model.Zone{Name: "  "})
	assert.True(t, HasRule(err, RuleInvalidForm))

	require.NoError(t, s.campus.CreateZone(&model.Zone{Name: "North"}))
	err = s.campus.CreateZone(&model.Zone{Name: " North "})
	assert.True(t, HasRule(err, RuleNameTaken))

	err = s.campus.CreateBuilding(&model.Building{ZoneId: 42, Name: "Library"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.campus.CreateDivision(&model.Division{BuildingId: 42, Name: "Lab"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCampusBuildingNameUniquePerZone(t *testing.T) {
	s := setup(t)
	north := &model.Zone{Name: "North"}
	south := &model.Zone{Name: "South"}
	require.NoError(t, s.campus.CreateZone(north))
	require.NoError(t, s.campus.CreateZone(south))

	require.NoError(t, s.campus.CreateBuilding(&model.Building{ZoneId: north.Id, Name: "Library"}))
	require.NoError(t, s.campus.CreateBuilding(&model.Building{ZoneId: south.Id, Name: "Library"}))
	err := s.campus.CreateBuilding(&model.Building{ZoneId: north.Id, Name: "Library"})
	assert.True(t, HasRule(err, RuleNameTaken))
}

func TestAssignAssistant(t *testing.T) {
	s := setup(t)
	admin := s.mustCreateAdmin(t, "root")
	ma := s.mustCreateMA(t, "jsmith", "pass1234")
	division := s.mustCreateDivision(t, "North", "Library", "Reading room")

	_, err := s.campus.AssignAssistant(division.Id, &admin.Id)
	assert.ErrorIs(t, err, ErrTargetNotMA)

	missing := 9999
	_, err = s.campus.AssignAssistant(division.Id, &missing)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.campus.AssignAssistant(9999, &ma.Id)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := s.campus.AssignAssistant(division.Id, &ma.Id)
	require.NoError(t, err)
	require.NotNil(t, updated.AssistantId)
	assert.Equal(t, ma.Id, *updated.AssistantId)

	divisions, err := s.campus.DivisionsOf(ma.Id)
	require.NoError(t, err)
	require.Len(t, divisions, 1)
	assert.Equal(t, division.Id, divisions[0].Id)

	_, err = s.campus.AssignAssistant(division.Id, nil)
	require.NoError(t, err)
	divisions, err = s.campus.DivisionsOf(ma.Id)
	require.NoError(t, err)
	assert.Empty(t, divisions)
}
