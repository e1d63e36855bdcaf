// Helpers for running tests against a real containerized database.
// Used by the e2e tests in tests/e2e.

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/sheetcharts/sheetcharts/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbName     = "sheetcharts"
	dbUser     = "sheetcharts"
	dbPassword = "sheetcharts-test"
)

// TestDatabase is a containerized MySQL instance plus the service
// configuration pointing at it.
type TestDatabase struct {
	Container testcontainers.Container
	Config    *config.Config
}

func (td *TestDatabase) Terminate(t *testing.T) {
	t.Helper()

	if td.Container != nil {
		if err := td.Container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate database container: %v", err)
		}
	}
}

// StartMySQL starts a MySQL container and waits until it accepts connections.
// The image can be overridden with DB_IMAGE.
func StartMySQL(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	image := os.Getenv("DB_IMAGE")
	if image == "" {
		image = "mysql:8.4"
	}

	tcpPort, err := nat.NewPort("tcp", "3306")
	if err != nil {
		t.Fatalf("Failed to create DB port: %v", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": dbPassword,
				"MYSQL_DATABASE":      dbName,
				"MYSQL_USER":          dbUser,
				"MYSQL_PASSWORD":      dbPassword,
			},
			WaitingFor: wait.ForListeningPort(tcpPort).WithStartupTimeout(120 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MySQL container: %v", err)
	}

	td := &TestDatabase{Container: container}

	host, err := container.Host(ctx)
	if err != nil {
		td.Terminate(t)
		t.Fatalf("Failed to resolve container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, tcpPort)
	if err != nil {
		td.Terminate(t)
		t.Fatalf("Failed to resolve mapped port: %v", err)
	}

	// The listening port comes up before the server is ready to authenticate.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", dbUser, dbPassword, host, mapped.Port(), dbName)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		td.Terminate(t)
		t.Fatalf("Failed to open MySQL connection: %v", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		td.Terminate(t)
		t.Fatalf("MySQL not ready after 30 seconds: %v", err)
	}

	td.Config = &config.Config{
		Port:              "4000",
		FrontendURL:       "http://localhost:5173",
		MaxUploadMB:       50,
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            mapped.Port(),
		DBDatabase:        dbName,
		DBUser:            dbUser,
		DBPassword:        dbPassword,
		DBConnectionLimit: 5,
		JWTSecret:         "e2e-test-secret",
		JWTExpiryHours:    1,
	}
	return td
}
