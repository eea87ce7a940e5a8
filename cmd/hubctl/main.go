// Command hubctl drives hubs, teams and meetings from the terminal. It keeps
// one logged-in session in a local SQLite file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/identity"
	"github.com/Rrens/meeting-buddy/internal/llm/providers"
	"github.com/Rrens/meeting-buddy/internal/meeting"
	"github.com/Rrens/meeting-buddy/internal/security"
	"github.com/Rrens/meeting-buddy/internal/service"
	"github.com/Rrens/meeting-buddy/internal/storage"
	"github.com/Rrens/meeting-buddy/internal/storage/sqlite"
	"github.com/Rrens/meeting-buddy/internal/store"
)

// app is the state shared by all commands of one invocation
type app struct {
	cfg       *config.Config
	backend   storage.Backend
	session   *identity.Provider
	store     *store.Store
	hubs      *service.HubService
	assistant *service.AssistantService
}

func main() {
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	a := &app{}
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	var (
		dbPath  string
		verbose bool
	)

	root := &cobra.Command{
		Use:          "hubctl",
		Short:        "Manage hubs, teams and meetings",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return a.open(cmd.Context(), dbPath)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "session database file (defaults to sqlite.path)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newHubCmd(a),
		newMemberCmd(a),
		newTeamCmd(a),
		newChannelCmd(a),
		newMeetingCmd(a),
		newAskCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// open wires storage, identity and the domain store, resuming a saved
// session if there is one
func (a *app) open(ctx context.Context, dbPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath == "" {
		dbPath = cfg.SQLite.Path
	}
	a.cfg = cfg

	backend, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return err
	}
	a.backend = backend

	var kv storage.KV = backend
	if cfg.Storage.EncryptionKey != "" {
		encryptor, err := security.NewEncryptorFromSecret(cfg.Storage.EncryptionKey)
		if err != nil {
			return err
		}
		kv = storage.NewEncrypted(backend, encryptor)
	}

	dir := identity.NewStoredDirectory(backend)
	if cfg.Demo.Seed {
		if err := identity.SeedDemo(ctx, dir, bcrypt.DefaultCost); err != nil {
			return err
		}
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// sessions never leave this machine
		secret = "hubctl-local-session"
	}
	auth := identity.NewAuthenticator(dir, security.NewJWTManager(secret, cfg.Auth.AccessTokenTTL))
	a.session = identity.NewProvider(auth, backend)
	a.store = store.New(a.session, kv, meeting.NewLinker(cfg.Meeting), store.Options{SeedDemo: cfg.Demo.Seed})
	a.hubs = service.NewHubService(auth)
	a.assistant = service.NewAssistantService(providers.NewRouter(cfg.LLM), cfg.LLM.DefaultProvider, cfg.LLM.Timeout)

	state, err := a.session.Restore(ctx)
	if err != nil {
		return err
	}
	if state.IsAuthenticated {
		return a.store.Load(ctx)
	}
	return nil
}

func (a *app) close() {
	if a.backend != nil {
		a.backend.Close()
	}
}

// printJSON writes v as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
