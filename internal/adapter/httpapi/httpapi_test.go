package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/adapter/logging"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, register func(r *mux.Router)) *httptest.Server {
	r := mux.NewRouter()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthAPI_LoginAndMe(t *testing.T) {
	srv := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var creds domain.LoginCredentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			if creds.Password != "secret" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
				return
			}
			writeJSON(w, http.StatusOK, domain.AuthResponse{Token: "tok-1", User: domain.User{ID: "u1", Email: creds.Email}})
		}).Methods(http.MethodPost)
		r.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "No token"})
				return
			}
			writeJSON(w, http.StatusOK, domain.User{ID: "u1", Name: "Ada"})
		}).Methods(http.MethodGet)
	})

	client := NewClient(srv.URL+"/api/", logging.NewNopLogger())
	auth := NewAuthAPI(client)

	_, err := auth.Login(context.Background(), domain.LoginCredentials{Email: "a@b.c", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Invalid email or password")

	resp, err := auth.Login(context.Background(), domain.LoginCredentials{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.Token)

	_, err = auth.Me(context.Background())
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	client.SetToken(resp.Token)
	user, err := auth.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	client.SetToken("")
	_, err = auth.Me(context.Background())
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestProblemAPI(t *testing.T) {
	problem := domain.Problem{
		ID:         "p1",
		Title:      "Two Sum",
		Difficulty: domain.DifficultyEasy,
		TestCases:  []domain.TestCase{{Input: "1 2", Output: "3"}},
		CodeStubs:  []domain.CodeStub{{Language: domain.LanguagePython, UserSnippet: "def solve():"}},
	}
	deleted := ""

	srv := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/problems", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []domain.Problem{problem})
		}).Methods(http.MethodGet)
		r.HandleFunc("/problems/{id}", func(w http.ResponseWriter, r *http.Request) {
			if mux.Vars(r)["id"] != "p1" {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "Problem not found"})
				return
			}
			writeJSON(w, http.StatusOK, problem)
		}).Methods(http.MethodGet)
		r.HandleFunc("/problems", func(w http.ResponseWriter, r *http.Request) {
			var p domain.Problem
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			p.ID = "p2"
			writeJSON(w, http.StatusCreated, p)
		}).Methods(http.MethodPost)
		r.HandleFunc("/problems/{id}", func(w http.ResponseWriter, r *http.Request) {
			var p domain.Problem
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			p.ID = mux.Vars(r)["id"]
			writeJSON(w, http.StatusOK, p)
		}).Methods(http.MethodPut)
		r.HandleFunc("/problems/{id}", func(w http.ResponseWriter, r *http.Request) {
			deleted = mux.Vars(r)["id"]
			writeJSON(w, http.StatusOK, map[string]string{"message": "Problem deleted successfully"})
		}).Methods(http.MethodDelete)
	})

	api := NewProblemAPI(NewClient(srv.URL, logging.NewNopLogger()))
	ctx := context.Background()

	list, err := api.ListProblems(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Two Sum", list[0].Title)

	got, err := api.GetProblem(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "3", got.TestCases[0].Output)
	stub, ok := got.StubFor(domain.LanguagePython)
	require.True(t, ok)
	assert.Equal(t, "def solve():", stub.UserSnippet)

	_, err = api.GetProblem(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	created, err := api.CreateProblem(ctx, &domain.Problem{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, "p2", created.ID)

	updated, err := api.UpdateProblem(ctx, "p1", &domain.Problem{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	require.NoError(t, api.DeleteProblem(ctx, "p1"))
	assert.Equal(t, "p1", deleted)
}

func TestSubmissionAPI(t *testing.T) {
	srv := newServer(t, func(r *mux.Router) {
		r.HandleFunc("/submissions/create", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			var req domain.CreateSubmissionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Code == "boom" {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "queue unavailable"})
				return
			}
			writeJSON(w, http.StatusCreated, domain.Submission{
				ID:        "s1",
				ProblemID: r.URL.Query().Get("problemId"),
				Code:      req.Code,
				Language:  req.Language,
				Status:    domain.StatusPending,
			})
		}).Methods(http.MethodPost)
		r.HandleFunc("/submissions/user", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []domain.Submission{{ID: "s1"}, {ID: "s2"}})
		}).Methods(http.MethodGet)
		r.HandleFunc("/submissions/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, domain.Submission{ID: mux.Vars(r)["id"], Status: domain.StatusSuccess})
		}).Methods(http.MethodGet)
	})

	client := NewClient(srv.URL, logging.NewNopLogger())
	client.SetToken("tok")
	api := NewSubmissionAPI(client)
	ctx := context.Background()

	s, err := api.CreateSubmission(ctx, "p1", domain.CreateSubmissionRequest{Code: "print(1)", Language: domain.LanguagePython})
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "p1", s.ProblemID)
	assert.Equal(t, domain.StatusPending, s.Status)

	_, err = api.CreateSubmission(ctx, "p1", domain.CreateSubmissionRequest{Code: "boom", Language: domain.LanguagePython})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrRequestFailed)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "queue unavailable", apiErr.Message)

	got, err := api.GetSubmission(ctx, "s9")
	require.NoError(t, err)
	assert.Equal(t, "s9", got.ID)

	list, err := api.ListUserSubmissions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewSubmissionAPI(NewClient(url, logging.NewNopLogger())).GetSubmission(context.Background(), "s1")
	assert.ErrorIs(t, err, errs.ErrRequestFailed)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "a", errorMessage([]byte(`{"message":"a","error":"b"}`)))
	assert.Equal(t, "b", errorMessage([]byte(`{"error":"b"}`)))
	assert.Equal(t, "plain text", errorMessage([]byte(" plain text\n")))
	assert.Equal(t, "", errorMessage(nil))
}
