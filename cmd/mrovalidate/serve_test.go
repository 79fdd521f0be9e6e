package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/mrovalidate/internal/config"
	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/metrics"
	"github.com/JonMunkholm/mrovalidate/internal/report"
	"github.com/JonMunkholm/mrovalidate/internal/web"
)

func newBackgroundRun(t *testing.T, args []string) *backgroundRun {
	t.Helper()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			Index:       args[0],
			IEDB:        args[1],
			TemplateDir: args[2],
			Report:      args[3],
		},
		Validation: config.ValidationConfig{Concurrency: 2, Timeout: time.Minute},
	}
	validator := core.NewValidator(core.WithConcurrency(cfg.Validation.Concurrency))
	recorder := metrics.NewRecorder()

	return &backgroundRun{
		cfg:       cfg,
		format:    report.FormatJSON,
		validator: validator,
		metrics:   recorder,
		server:    web.NewServer(web.Deps{Validator: validator, Sources: sources(cfg), Metrics: recorder}),
	}
}

func TestBackgroundRun_RewritesReport(t *testing.T) {
	args := emptyOntology(t)
	b := newBackgroundRun(t, args)

	b.run(context.Background(), []string{filepath.Join(args[2], "chain.tsv")})

	last := b.server.LastReport()
	require.NotNil(t, last)
	data, err := os.ReadFile(args[3])
	require.NoError(t, err)
	assert.Contains(t, string(data), last.RunID.String())

	b.run(context.Background(), nil)

	data, err = os.ReadFile(args[3])
	require.NoError(t, err)
	assert.Contains(t, string(data), b.server.LastReport().RunID.String())
	assert.NotEqual(t, last.RunID, b.server.LastReport().RunID)
}

func TestBackgroundRun_FaultKeepsPreviousReport(t *testing.T) {
	args := emptyOntology(t)
	require.NoError(t, os.Remove(filepath.Join(args[2], "chain.tsv")))
	b := newBackgroundRun(t, args)

	b.run(context.Background(), nil)

	assert.Nil(t, b.server.LastReport())
	_, err := os.Stat(args[3])
	assert.True(t, os.IsNotExist(err))
}
