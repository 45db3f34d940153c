package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/core/domain"
)

func TestDependencyGraph_Missing(t *testing.T) {
	t.Parallel()

	g := domain.NewDependencyGraph()
	g.Add("a", nil)
	g.Add("b", []domain.ArtifactID{"a"})
	g.Add("c", []domain.ArtifactID{"a", "ghost"})

	missing := g.Missing()
	require.Len(t, missing, 1)
	assert.Equal(t, domain.ArtifactID("c"), missing[0].Dependent)
	assert.Equal(t, domain.ArtifactID("ghost"), missing[0].Missing)
}

func TestDependencyGraph_Validate(t *testing.T) {
	t.Parallel()

	t.Run("acyclic", func(t *testing.T) {
		t.Parallel()

		g := domain.NewDependencyGraph()
		g.Add("raw", nil)
		g.Add("analysis", []domain.ArtifactID{"raw"})
		g.Add("synthesis", []domain.ArtifactID{"analysis"})
		g.Add("review", []domain.ArtifactID{"synthesis"})

		require.NoError(t, g.Validate())
	})

	t.Run("self cycle", func(t *testing.T) {
		t.Parallel()

		g := domain.NewDependencyGraph()
		g.Add("a", []domain.ArtifactID{"a"})

		err := g.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCycleDetected)
	})

	t.Run("two node cycle", func(t *testing.T) {
		t.Parallel()

		g := domain.NewDependencyGraph()
		g.Add("a", []domain.ArtifactID{"b"})
		g.Add("b", []domain.ArtifactID{"a"})

		err := g.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCycleDetected)
	})

	t.Run("missing dependency does not mask acyclicity", func(t *testing.T) {
		t.Parallel()

		g := domain.NewDependencyGraph()
		g.Add("a", []domain.ArtifactID{"ghost"})

		require.NoError(t, g.Validate())
		require.Len(t, g.Missing(), 1)
	})
}

func TestAuditTrail_Record(t *testing.T) {
	t.Parallel()

	trail := domain.NewAuditTrail("run-1")
	trail.Record(domain.AuditEvent{Kind: domain.EventEnqueued, TaskID: "t1"})
	trail.Record(domain.AuditEvent{Kind: domain.EventClaimed, TaskID: "t1"})
	trail.Record(domain.AuditEvent{Kind: domain.EventCompleted, TaskID: "t1"})

	events := trail.Snapshot()
	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, uint64(i+1), ev.Seq)
		assert.False(t, ev.At.IsZero())
	}
	assert.Equal(t, domain.EventEnqueued, events[0].Kind)
	assert.Equal(t, domain.EventCompleted, events[2].Kind)
}
