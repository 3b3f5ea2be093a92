package compendium_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/compendium/internal/server"
	"github.com/ashita-ai/compendium/internal/service/catalog"
	"github.com/ashita-ai/compendium/internal/testutil"
	"github.com/ashita-ai/compendium/sdk/go/compendium"
)

// newClient serves a fresh in-memory catalog and returns a client for it.
func newClient(t *testing.T) (*compendium.Client, string) {
	t.Helper()
	logger := testutil.TestLogger()
	db := testutil.NewSQLiteDB(t)
	srv := httptest.NewServer(server.New(server.ServerConfig{
		DB:                  db,
		Catalog:             catalog.New(db, nil, logger),
		Logger:              logger,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		Version:             "sdk-test",
		MaxRequestBodyBytes: 1 << 20,
	}).Handler())
	t.Cleanup(srv.Close)

	c, err := compendium.NewClient(compendium.Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c, srv.URL
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := compendium.NewClient(compendium.Config{})
	assert.Error(t, err)
}

func TestClassLifecycle(t *testing.T) {
	c, base := newClient(t)
	ctx := context.Background()

	armor, err := c.Proficiencies.Create(ctx, compendium.ProficiencyInput{
		Index: compendium.Ptr("light-armor"),
		Name:  compendium.Ptr("Light Armor"),
		Type:  compendium.Ptr("Armor"),
	})
	require.NoError(t, err)

	wizard, err := c.Classes.Create(ctx, compendium.ClassInput{
		Index:         compendium.Ptr("wizard"),
		Name:          compendium.Ptr("Wizard"),
		HitDie:        compendium.Ptr(6),
		Proficiencies: &[]int64{armor.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, base+"/classes/"+strconv.FormatInt(wizard.ID, 10)+"/", wizard.DetailURL)
	require.Len(t, wizard.ClassProficiencies, 1)
	assert.Equal(t, "Light Armor", wizard.ClassProficiencies[0].ProficiencyName)

	// A partial update leaves the proficiency set alone.
	renamed, err := c.Classes.Update(ctx, wizard.ID, compendium.ClassInput{Name: compendium.Ptr("Mage")})
	require.NoError(t, err)
	assert.Equal(t, "Mage", renamed.Name)
	assert.Equal(t, 6, renamed.HitDie)
	assert.Len(t, renamed.ClassProficiencies, 1)

	// An empty list clears it.
	cleared, err := c.Classes.Update(ctx, wizard.ID, compendium.ClassInput{Proficiencies: &[]int64{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.ClassProficiencies)

	profs, err := c.Proficiencies.List(ctx)
	require.NoError(t, err)
	require.Len(t, profs, 1)
	assert.Equal(t, "Armor", profs[0].Type)
	assert.Equal(t, "light-armor", profs[0].Index)

	require.NoError(t, c.Classes.Delete(ctx, wizard.ID))
	_, err = c.Classes.Get(ctx, wizard.ID)
	assert.True(t, compendium.IsNotFound(err))
	assert.True(t, compendium.IsNotFound(c.Classes.Delete(ctx, wizard.ID)))
}

func TestValidationErrorsAreKeyedByField(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	_, err := c.Classes.Create(ctx, compendium.ClassInput{
		Name:          compendium.Ptr("Wizard"),
		HitDie:        compendium.Ptr(0),
		Proficiencies: &[]int64{42},
	})
	require.Error(t, err)
	assert.True(t, compendium.IsInvalid(err))

	fields := compendium.FieldErrors(err)
	assert.Equal(t, []string{"This field is required."}, fields["index"])
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 1."}, fields["hit_die"])
	assert.Equal(t, []string{`Invalid pk "42" - object does not exist.`}, fields["proficiencies"])

	classes, err := c.Classes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func TestSpellNullableFields(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	school, err := c.Schools.Create(ctx, compendium.SchoolInput{
		Index: compendium.Ptr("evocation"),
		Name:  compendium.Ptr("Evocation"),
	})
	require.NoError(t, err)

	spell, err := c.Spells.Create(ctx, compendium.SpellInput{
		Index:         compendium.Ptr("fire-bolt"),
		Name:          compendium.Ptr("Fire Bolt"),
		Level:         compendium.Ptr(0),
		AttackType:    compendium.Value("ranged"),
		CastingTime:   compendium.Ptr("1 action"),
		Concentration: compendium.Ptr(false),
		Duration:      compendium.Ptr("Instantaneous"),
		Range:         compendium.Ptr("120 feet"),
		Ritual:        compendium.Ptr(false),
		School:        &school.ID,
		Descriptions:  &[]string{"You hurl a mote of fire."},
	})
	require.NoError(t, err)
	require.NotNil(t, spell.AttackType)
	assert.Equal(t, "ranged", *spell.AttackType)
	assert.Nil(t, spell.Material)
	assert.Equal(t, "Evocation", spell.SchoolName)

	// Material is left out and stays null; attack type is explicitly cleared.
	spell, err = c.Spells.Update(ctx, spell.ID, compendium.SpellInput{AttackType: compendium.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, spell.AttackType)
	assert.Equal(t, []string{"You hurl a mote of fire."}, spell.Descriptions)

	got, err := c.Schools.Get(ctx, school.ID)
	require.NoError(t, err)
	require.Len(t, got.Spells, 1)
	assert.Equal(t, "Fire Bolt", got.Spells[0].Name)
}

func TestRootAndHealth(t *testing.T) {
	c, base := newClient(t)
	ctx := context.Background()

	root, err := c.Root(ctx)
	require.NoError(t, err)
	assert.Equal(t, base+"/spells/", root["spells"])
	assert.Len(t, root, 7)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "sdk-test", h.Version)
	assert.Equal(t, "sqlite", h.Dialect)
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := compendium.NewClient(compendium.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Races.List(context.Background())
	var apiErr *compendium.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Code)
	assert.Contains(t, apiErr.Message, "upstream down")
	assert.Nil(t, compendium.FieldErrors(err))
}
