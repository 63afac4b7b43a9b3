package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	catalogapp "github.com/ceramica/backend/internal/application/catalog"
	inventoryapp "github.com/ceramica/backend/internal/application/inventory"
	"github.com/ceramica/backend/internal/infrastructure/auth"
	"github.com/ceramica/backend/internal/infrastructure/config"
	"github.com/ceramica/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// sqliteDeps points commands at a file-backed SQLite database so state
// survives between the test and the command
func sqliteDeps(t *testing.T) (Deps, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ctl.db")

	database, err := persistence.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(database.DB))
	require.NoError(t, database.Close())

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret-at-least-32-characters!!", Issuer: "ceramica", AccessTokenExpiration: time.Hour},
	}
	return Deps{
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
		OpenDatabase: func(*config.Config, *zap.Logger) (*persistence.Database, error) {
			return persistence.OpenSQLite(path)
		},
	}, path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ctl", cmd.Use)
	assert.Contains(t, cmd.Long, "migrations")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "steps"},
		{"migrate", "version"},
		{"migrate", "force"},
		{"migrate", "create"},
		{"seed", "areas"},
		{"inventory", "reconcile"},
		{"token", "issue"},
	}

	for _, path := range commands {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "info", levelFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	migrateCmd, _, err := cmd.Find([]string{"migrate", "up"})
	require.NoError(t, err)
	assert.NotNil(t, migrateCmd.Flags().Lookup("path"), "path is inherited by every migrate subcommand")

	seedCmd, _, err := cmd.Find([]string{"seed", "areas"})
	require.NoError(t, err)
	fileFlag := seedCmd.Flags().Lookup("file")
	require.NotNil(t, fileFlag)
	assert.Equal(t, "f", fileFlag.Shorthand)

	reconcileCmd, _, err := cmd.Find([]string{"inventory", "reconcile"})
	require.NoError(t, err)
	fixFlag := reconcileCmd.Flags().Lookup("fix")
	require.NotNil(t, fixFlag)
	assert.Equal(t, "false", fixFlag.DefValue)

	tokenCmd, _, err := cmd.Find([]string{"token", "issue"})
	require.NoError(t, err)
	roleFlag := tokenCmd.Flags().Lookup("role")
	require.NotNil(t, roleFlag)
	assert.Equal(t, "member", roleFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	deps, _ := sqliteDeps(t)
	_, err := execute(t, NewRootCommandWithDeps(deps), "token", "issue", "--username", "ana", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMigrateArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"steps needs a count", []string{"migrate", "steps"}, "accepts 1 arg"},
		{"steps rejects words", []string{"migrate", "steps", "two"}, "invalid number"},
		{"force rejects words", []string{"migrate", "force", "latest"}, "invalid number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _ := sqliteDeps(t)
			_, err := execute(t, NewRootCommandWithDeps(deps), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMigrateCreate(t *testing.T) {
	deps, _ := sqliteDeps(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000003_inventory.up.sql"), nil, 0o600))

	out, err := execute(t, NewRootCommandWithDeps(deps), "migrate", "create", "Kit SKU index", "--path", dir, "-d", "unique sku per kit")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "000004_kit_sku_index.up.sql"))

	body, err := os.ReadFile(filepath.Join(dir, "000004_kit_sku_index.up.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- unique sku per kit")
	_, err = os.Stat(filepath.Join(dir, "000004_kit_sku_index.down.sql"))
	assert.NoError(t, err)
}

func TestParseSeedAreas(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []catalogapp.SeedArea
		wantErr string
	}{
		{
			name: "areas with subareas",
			input: `
areas:
  - name: Producción
    description: Taller
    subareas:
      - name: Esmaltado
      - name: Hornos
        description: Alta temperatura
  - name: Ventas
`,
			want: []catalogapp.SeedArea{
				{Name: "Producción", Description: "Taller", Subareas: []catalogapp.SeedSubarea{
					{Name: "Esmaltado"},
					{Name: "Hornos", Description: "Alta temperatura"},
				}},
				{Name: "Ventas"},
			},
		},
		{name: "empty document", input: "", wantErr: "empty"},
		{name: "no areas", input: "areas: []\n", wantErr: "no areas"},
		{name: "unknown key", input: "areas:\n  - name: Ventas\n    owner: ana\n", wantErr: "parse seed file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeedAreas(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeedAreas(t *testing.T) {
	deps, dbPath := sqliteDeps(t)
	file := filepath.Join(t.TempDir(), "areas.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
areas:
  - name: Producción
    subareas:
      - name: Esmaltado
      - name: Hornos
  - name: Ventas
`), 0o600))

	out, err := execute(t, NewRootCommandWithDeps(deps), "seed", "areas", "--file", file, "--format", "json")
	require.NoError(t, err)
	var first catalogapp.SeedResult
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, catalogapp.SeedResult{AreasCreated: 2, SubareasCreated: 2}, first)

	// a second run only updates
	out, err = execute(t, NewRootCommandWithDeps(deps), "seed", "areas", "-f", file)
	require.NoError(t, err)
	assert.Contains(t, out, "areas: 0 created, 2 updated")
	assert.Contains(t, out, "subareas: 0 created, 2 updated")

	database, err := persistence.OpenSQLite(dbPath)
	require.NoError(t, err)
	defer database.Close()
	var count int64
	require.NoError(t, database.DB.Table("areas").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSeedAreas_MissingFile(t *testing.T) {
	deps, _ := sqliteDeps(t)
	_, err := execute(t, NewRootCommandWithDeps(deps), "seed", "areas", "--file", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
}

func TestInventoryReconcile(t *testing.T) {
	deps, dbPath := sqliteDeps(t)

	database, err := persistence.OpenSQLite(dbPath)
	require.NoError(t, err)
	repos := persistence.NewRepositories(database.DB)
	svc := inventoryapp.NewProduccionService(repos.ProduccionRepo(), repos.MovementRepo(), repos.AllocationRepo(),
		persistence.NewGormTransactionScope(database.DB), inventoryapp.NewAllocator(zap.NewNop()), zap.NewNop())
	item, err := svc.Create(context.Background(), inventoryapp.ProduccionInput{
		Producto: "Taza", Etapa: "Terminado", Color: "Azul", Quantity: 8,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, database.DB.Exec("UPDATE produccion_inventory SET apartados = 3 WHERE id = ?", item.ID).Error)
	require.NoError(t, database.Close())

	out, err := execute(t, NewRootCommandWithDeps(deps), "inventory", "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "drift "+item.ID.String())
	assert.Contains(t, out, "apartados=3 allocated=0")

	out, err = execute(t, NewRootCommandWithDeps(deps), "inventory", "reconcile", "--fix", "--format", "json")
	require.NoError(t, err)
	var drifts []inventoryapp.Drift
	require.NoError(t, json.Unmarshal([]byte(out), &drifts))
	require.Len(t, drifts, 1)
	assert.True(t, drifts[0].Fixed)

	out, err = execute(t, NewRootCommandWithDeps(deps), "inventory", "reconcile")
	require.NoError(t, err)
	assert.Equal(t, "no drift found\n", out)
}

func TestTokenIssue(t *testing.T) {
	deps, _ := sqliteDeps(t)
	cfg, _ := deps.LoadConfig()
	jwtService := auth.NewJWTService(cfg.JWT)

	t.Run("signs a verifiable admin token", func(t *testing.T) {
		out, err := execute(t, NewRootCommandWithDeps(deps), "token", "issue",
			"--username", "ana", "--email", "ana@example.com", "--role", "admin",
			"--user-id", "6f1c2a7e-3b7c-4d1e-9a55-2a0d7c3e9b11")
		require.NoError(t, err)

		claims, err := jwtService.ValidateAccessToken(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, "ana", claims.Username)
		assert.Equal(t, auth.RoleAdmin, claims.Role)
		assert.Equal(t, "6f1c2a7e-3b7c-4d1e-9a55-2a0d7c3e9b11", claims.UserID)
	})

	t.Run("json output", func(t *testing.T) {
		out, err := execute(t, NewRootCommandWithDeps(deps), "token", "issue", "--username", "ana", "--format", "json")
		require.NoError(t, err)
		var res issuedToken
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, "Bearer", res.TokenType)
		assert.NotEmpty(t, res.UserID)
		assert.True(t, res.ExpiresAt.After(time.Now()))
		assert.Positive(t, res.ExpiresIn)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := execute(t, NewRootCommandWithDeps(deps), "token", "issue", "--username", "ana", "--role", "owner")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid role")
	})

	t.Run("rejects malformed user id", func(t *testing.T) {
		_, err := execute(t, NewRootCommandWithDeps(deps), "token", "issue", "--username", "ana", "--user-id", "42")
		require.Error(t, err)
	})
}
