//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	server "truview/internal/adapters/http_server"
	redisad "truview/internal/adapters/redis"
	"truview/internal/app"
	"truview/internal/domain"
	mysqlrepo "truview/internal/storage/mysql"
)

// ---------- helpers ----------

// bracketRemote "translates" by tagging text with the target language.
type bracketRemote struct{}

func (bracketRemote) Detect(ctx context.Context, text string) (string, error) { return "en", nil }

func (bracketRemote) Translate(ctx context.Context, text, target, source string) (string, error) {
	return fmt.Sprintf("[%s] %s", target, text), nil
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping docker test in -short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=truview",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/truview?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	pool.MaxWait = 2 * time.Minute
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK && dst != nil {
		if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

// ---------- the test ----------

func TestHTTP_EndToEnd_CreateTranslateRead(t *testing.T) {
	repo := mysqlrepo.New(startMySQL(t))

	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	langs := []string{"en", "hi", "ta"}
	tr := app.NewTranslationClient(bracketRemote{})
	proc := app.NewProcessor(repo, tr, cache, langs)
	runner := app.NewRunner(proc.Process, 2, 16, 30*time.Second)
	runner.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = runner.Shutdown(ctx)
	})

	srv := server.New(10 * time.Second)
	srv.MountHandlers(&server.Handlers{
		Reviews:   app.NewReviewService(repo, runner),
		Q:         app.NewQueryService(repo, cache, time.Minute),
		T:         app.NewOnDemandService(repo, tr, cache),
		Languages: langs,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// create
	res, err := http.Post(ts.URL+"/v1/reviews", "application/json",
		strings.NewReader(`{"title":"Great","description":"This product works well"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	var created domain.ReviewView
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusCreated || created.ID == "" {
		t.Fatalf("create: status %d body %+v", res.StatusCode, created)
	}

	// wait for the background job to fill every language
	deadline := time.Now().Add(20 * time.Second)
	for {
		// a poll racing the job may cache a stale view; expire it
		mr.FastForward(2 * time.Minute)
		var v domain.ReviewView
		if code := getJSON(t, ts.URL+"/v1/reviews/"+created.ID, &v); code != http.StatusOK {
			t.Fatalf("get review: status %d", code)
		}
		if v.OriginalLanguage == "en" && len(v.Languages) == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("background translation did not finish: %+v", v)
		}
		time.Sleep(100 * time.Millisecond)
	}

	var got domain.TranslationResult
	if code := getJSON(t, ts.URL+"/v1/reviews/"+created.ID+"/translation?lang=hi", &got); code != http.StatusOK {
		t.Fatalf("translation: status %d", code)
	}
	want := domain.TranslationResult{
		TranslatedText:   "[hi] This product works well",
		TranslatedTitle:  "[hi] Great",
		OriginalLanguage: "en",
		Cached:           true,
	}
	if got != want {
		t.Fatalf("translation: got %+v want %+v", got, want)
	}

	if code := getJSON(t, ts.URL+"/v1/reviews/missing/translation?lang=hi", nil); code != http.StatusNotFound {
		t.Fatalf("missing review: status %d", code)
	}
}
