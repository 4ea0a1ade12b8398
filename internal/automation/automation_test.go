package automation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskreview/internal/automation"
	"github.com/mtlprog/taskreview/internal/domain"
)

const dispatcherID = "5f0c9a7e-2b1d-4c3e-9f4a-8d6b2e1c0a93"

func TestParse(t *testing.T) {
	settings, err := automation.Parse(strings.NewReader(`
stages:
  - stage_id: assembly
    dispatcher_id: ` + dispatcherID + `
    dispatcher_percentage: 10
  - stage_id: " delivery "
    dispatcher_id: ` + dispatcherID + `
    dispatcher_percentage: "12.5%"
`))
	require.NoError(t, err)
	require.Len(t, settings, 2)

	assert.Equal(t, "assembly", settings[0].StageID)
	assert.Equal(t, dispatcherID, settings[0].DispatcherID)
	assert.True(t, settings[0].DispatcherPercentage.Equal(decimal.NewFromInt(10)))

	assert.Equal(t, "delivery", settings[1].StageID)
	assert.True(t, settings[1].DispatcherPercentage.Equal(decimal.RequireFromString("12.5")))
}

func TestParse_Empty(t *testing.T) {
	settings, err := automation.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, settings)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "percentage above 100",
			yaml: "stages:\n  - stage_id: a\n    dispatcher_id: " + dispatcherID + "\n    dispatcher_percentage: 101\n",
			want: domain.ErrInvalidPercentage,
		},
		{
			name: "zero percentage",
			yaml: "stages:\n  - stage_id: a\n    dispatcher_id: " + dispatcherID + "\n    dispatcher_percentage: 0\n",
			want: domain.ErrInvalidPercentage,
		},
		{name: "bad uuid", yaml: "stages:\n  - stage_id: a\n    dispatcher_id: bob\n    dispatcher_percentage: 5\n"},
		{name: "not a number", yaml: "stages:\n  - stage_id: a\n    dispatcher_id: " + dispatcherID + "\n    dispatcher_percentage: lots\n"},
		{name: "unknown field", yaml: "stages:\n  - stage_id: a\n    dispatcher: " + dispatcherID + "\n"},
		{
			name: "duplicate stage",
			yaml: "stages:\n" +
				"  - {stage_id: a, dispatcher_id: " + dispatcherID + ", dispatcher_percentage: 5}\n" +
				"  - {stage_id: a, dispatcher_id: " + dispatcherID + ", dispatcher_percentage: 6}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := automation.Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automation.yaml")
	content := "stages:\n  - stage_id: paint\n    dispatcher_id: " + dispatcherID + "\n    dispatcher_percentage: 7.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	settings, err := automation.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "paint", settings[0].StageID)

	_, err = automation.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

type recordingStore struct {
	stored []string
	failOn string
}

func (s *recordingStore) Upsert(_ context.Context, setting *domain.AutomationSetting) error {
	if setting.StageID == s.failOn {
		return errors.New("constraint violation")
	}
	s.stored = append(s.stored, setting.StageID)
	return nil
}

func TestImport(t *testing.T) {
	settings := []*domain.AutomationSetting{
		{StageID: "a", DispatcherID: dispatcherID, DispatcherPercentage: decimal.NewFromInt(5)},
		{StageID: "b", DispatcherID: dispatcherID, DispatcherPercentage: decimal.NewFromInt(5)},
		{StageID: "c", DispatcherID: dispatcherID, DispatcherPercentage: decimal.NewFromInt(5)},
	}

	store := &recordingStore{}
	n, err := automation.Import(context.Background(), store, settings)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"a", "b", "c"}, store.stored)

	failing := &recordingStore{failOn: "b"}
	n, err = automation.Import(context.Background(), failing, settings)
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}
