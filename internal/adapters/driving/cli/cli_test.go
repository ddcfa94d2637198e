package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	sources "github.com/DIVT313/forensic-agent/internal/adapters/driven/sources/memory"
	"github.com/DIVT313/forensic-agent/internal/adapters/driven/storage/memory"
	"github.com/DIVT313/forensic-agent/internal/core/domain"
	"github.com/DIVT313/forensic-agent/internal/core/ports/driven"
	"github.com/DIVT313/forensic-agent/internal/core/services"
)

type testEnv struct {
	store    *memory.ArtifactStore
	config   *memory.ConfigStore
	settings *services.SettingsService
}

// newTestEnv wires real services over in-memory adapters.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	reader := sources.NewReader().
		Add(domain.SourceMessages, domain.RawRecord{
			domain.FieldAddress: "+15550001", domain.FieldBody: "hello",
			domain.FieldDate: int64(1700000000000), domain.FieldType: int64(1),
		}).
		Add(domain.SourceContacts, domain.RawRecord{domain.FieldID: "1", domain.FieldDisplayName: "Ada"}).
		AddPhones("1", "+441").
		FailOpen(domain.SourceCallEvents, domain.ErrUnauthorized)
	readers := map[domain.SourceKind]driven.SourceReader{}
	for _, kind := range domain.AllSourceKinds() {
		readers[kind] = reader
	}

	env := &testEnv{
		store:  memory.NewArtifactStore(),
		config: memory.NewConfigStore(),
	}
	env.settings = services.NewSettingsService(env.config, t.TempDir())

	Configure(&Dependencies{
		Extraction: services.NewOrchestrator(env.store, readers),
		Retrieval:  services.NewRetrievalService(env.store, readers),
		Settings:   env.settings,
	})
	t.Cleanup(func() {
		Configure(&Dependencies{})
		configured = false
	})
	return env
}

// execute runs the root command and returns stdout. Flags are reset
// afterwards since cobra keeps their values between executions.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestPrepare_RunsSetupOnce(t *testing.T) {
	configured = false
	calls := 0
	var gotHome string
	setupFn = func(home string) (*Dependencies, error) {
		calls++
		gotHome = home
		return &Dependencies{Settings: services.NewSettingsService(memory.NewConfigStore(), home)}, nil
	}
	t.Cleanup(func() {
		setupFn = nil
		Configure(&Dependencies{})
		configured = false
	})

	_, err := execute(t, "--home", "/tmp/agent", "config", "show")
	require.NoError(t, err)
	_, err = execute(t, "config", "show")
	require.NoError(t, err)

	require.Equal(t, 1, calls)
	require.Equal(t, "/tmp/agent", gotHome)
}

func TestPrepare_VersionSkipsSetup(t *testing.T) {
	configured = false
	setupFn = func(string) (*Dependencies, error) {
		t.Fatal("setup must not run for version")
		return nil, nil
	}
	t.Cleanup(func() { setupFn = nil })

	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "forensic-agent version")
}
