package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageIsTerminal(t *testing.T) {
	assert.True(t, StageCompleted.IsTerminal())
	assert.True(t, StageError.IsTerminal())

	for _, s := range []Stage{StagePending, StageBuilding, StagePlanning, StageExecuting, StageRecording} {
		assert.False(t, s.IsTerminal(), "stage %q", s)
	}
}

func TestIsValidStage(t *testing.T) {
	assert.True(t, IsValidStage(StageRecording))
	assert.False(t, IsValidStage(Stage("processing")))
	assert.False(t, IsValidStage(Stage("")))
	assert.False(t, IsValidStage(Stage("Completed")), "validation is exact, normalization happens upstream")
}

func TestNewDemoSession(t *testing.T) {
	s := NewDemoSession("demo_1", "https://github.com/acme/shop", "Show the checkout flow", "Checkout")

	assert.Equal(t, StagePending, s.Stage)
	assert.Equal(t, 0, s.Progress)
	assert.NotNil(t, s.Logs)
	assert.Empty(t, s.Logs)
	assert.False(t, s.Terminal)
	assert.Nil(t, s.TerminalAt)
	assert.NoError(t, s.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	s := NewDemoSession("demo_1", "https://github.com/acme/shop", "prompt", "")
	s.Logs = append(s.Logs, LogEntry{Kind: LogKindMilestone, Text: "checkpoint", Timestamp: now})
	s.TerminalAt = &now

	c := s.Clone()
	c.Logs[0].Text = "mutated"
	c.Logs = append(c.Logs, LogEntry{Kind: LogKindAction, Text: "extra"})
	*c.TerminalAt = now.Add(time.Hour)

	assert.Equal(t, "checkpoint", s.Logs[0].Text)
	assert.Len(t, s.Logs, 1)
	assert.True(t, s.TerminalAt.Equal(now))
}

func TestLastLog(t *testing.T) {
	s := NewDemoSession("demo_1", "https://github.com/acme/shop", "prompt", "")
	assert.Nil(t, s.LastLog())

	s.Logs = append(s.Logs,
		LogEntry{Kind: LogKindReasoning, Text: "first"},
		LogEntry{Kind: LogKindAction, Text: "second"},
	)
	last := s.LastLog()
	require.NotNil(t, last)
	assert.Equal(t, "second", last.Text)
}

func TestSessionJSONRoundTrip(t *testing.T) {
	s := NewDemoSession("demo_1", "https://github.com/acme/shop", "prompt", "Checkout")
	s.Stage = StageExecuting
	s.Progress = 55
	s.Logs = append(s.Logs, LogEntry{Kind: LogKindAction, Text: "Walking through the primary user flow", Timestamp: time.Now()})

	data, err := s.ToJSON()
	require.NoError(t, err)

	got, err := DemoSessionFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, StageExecuting, got.Stage)
	assert.Equal(t, 55, got.Progress)
	require.Len(t, got.Logs, 1)
	assert.Equal(t, LogKindAction, got.Logs[0].Kind)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DemoSession)
		wantErr bool
	}{
		{"valid", func(s *DemoSession) {}, false},
		{"missing id", func(s *DemoSession) { s.ID = "" }, true},
		{"bad stage", func(s *DemoSession) { s.Stage = "processing" }, true},
		{"negative progress", func(s *DemoSession) { s.Progress = -1 }, true},
		{"progress over 100", func(s *DemoSession) { s.Progress = 101 }, true},
		{"terminal with live stage", func(s *DemoSession) { s.Terminal = true; s.Stage = StageExecuting }, true},
		{"terminal error", func(s *DemoSession) { s.Terminal = true; s.Stage = StageError }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDemoSession("demo_1", "https://github.com/acme/shop", "prompt", "")
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
