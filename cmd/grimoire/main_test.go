package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/grimoire/core"
)

func newLoggerContext(t *testing.T, level string) *cli.Context {
	t.Helper()
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info"},
		},
	}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("log-level", level, "")
	return cli.NewContext(app, set, nil)
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			err := setupLogger(newLoggerContext(t, level))
			assert.NoError(t, err, "level %q", level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := setupLogger(newLoggerContext(t, "verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestReadChunkInputs(t *testing.T) {
	dir := t.TempDir()

	t.Run("parses records", func(t *testing.T) {
		path := filepath.Join(dir, "chunks.jsonl")
		content := `{"title":"Fireball","content":"8d6 fire damage","page":241}
{"title":"Grappling","content":"Contested athletics check","page":195,"section_path":["Combat","Actions"],"metadata":{"errata":"2024"}}
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		inputs, err := readChunkInputs(path, "D&D 5e", core.SourceKindRulebook)
		require.NoError(t, err)
		require.Len(t, inputs, 2)

		assert.Equal(t, "Fireball", inputs[0].Title)
		assert.Equal(t, 241, inputs[0].PageNumber)
		assert.Equal(t, "D&D 5e", inputs[0].System)
		assert.Equal(t, core.SourceKindRulebook, inputs[0].SourceKind)

		assert.Equal(t, []string{"Combat", "Actions"}, inputs[1].SectionPath)
		assert.Equal(t, "2024", inputs[1].Metadata["errata"])
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.jsonl")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		inputs, err := readChunkInputs(path, "D&D 5e", core.SourceKindRulebook)
		require.NoError(t, err)
		assert.Empty(t, inputs)
	})

	t.Run("malformed record reports the entry", func(t *testing.T) {
		path := filepath.Join(dir, "bad.jsonl")
		require.NoError(t, os.WriteFile(path, []byte(`{"title":"ok","content":"fine"}
not json
`), 0644))

		_, err := readChunkInputs(path, "D&D 5e", core.SourceKindRulebook)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entry 2")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readChunkInputs(filepath.Join(dir, "nope.jsonl"), "D&D 5e", core.SourceKindRulebook)
		assert.Error(t, err)
	})
}

func TestIngestCommandRequiresFlags(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Required: true},
					&cli.StringFlag{Name: "source", Required: true},
					&cli.StringFlag{Name: "system", Required: true},
				},
			},
		},
	}

	err := app.Run([]string{"grimoire", "ingest", "chunks.jsonl"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Required flag")
}
