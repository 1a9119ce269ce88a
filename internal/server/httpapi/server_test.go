package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pmorel/cv-backend/internal/common"
	"github.com/pmorel/cv-backend/internal/logging"
	"github.com/pmorel/cv-backend/internal/server/auth"
	sc "github.com/pmorel/cv-backend/internal/server/config"
	"github.com/pmorel/cv-backend/internal/server/diplomas"
)

const testPassword = "correct horse battery staple"

type stubService struct {
	items     []*diplomas.Diploma
	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error

	gotSession string
	gotInput   diplomas.CreateInput
	gotUpload  *diplomas.Upload
	gotUpdate  diplomas.UpdateInput
	deletedID  int64
}

func (s *stubService) List(context.Context) ([]*diplomas.Diploma, error) {
	return s.items, s.listErr
}

func (s *stubService) Get(_ context.Context, id int64) (*diplomas.Diploma, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	for _, d := range s.items {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *stubService) Create(_ context.Context, session string, in diplomas.CreateInput, file *diplomas.Upload) (*diplomas.Diploma, error) {
	s.gotSession = session
	s.gotInput = in
	s.gotUpload = file
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &diplomas.Diploma{ID: 10, Title: in.Title, Institution: in.Institution,
		Year: in.Year, Category: diplomas.Category(in.Category), PdfURL: in.PdfURL}, nil
}

func (s *stubService) Update(_ context.Context, session string, id int64, in diplomas.UpdateInput) (*diplomas.Diploma, error) {
	s.gotSession = session
	s.gotUpdate = in
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	d := &diplomas.Diploma{ID: id, Title: "old", Institution: "old", Year: "2020", Category: diplomas.CategoryTech}
	if in.Title != nil {
		d.Title = *in.Title
	}
	return d, nil
}

func (s *stubService) Delete(_ context.Context, session string, id int64) error {
	s.gotSession = session
	s.deletedID = id
	return s.deleteErr
}

func newTestServer(t *testing.T, svc DiplomaService) (*Server, http.Handler) {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.AdminPasswordHash = hash

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := NewServer(cfg, auth.NewVerifier(hash), auth.NewSessions(hash, time.Hour), svc, logger)
	return srv, srv.Router()
}

func adminCookie(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	token, err := srv.sessions.Issue()
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, &stubService{})

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestListDiplomas(t *testing.T) {
	svc := &stubService{items: []*diplomas.Diploma{
		{ID: 1, Title: "CrossFit L1", Category: diplomas.CategoryFitness},
		{ID: 2, Title: "First Aid", Category: diplomas.CategoryMedical},
	}}
	_, h := newTestServer(t, svc)

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/diplomas", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var got []*diplomas.Diploma
	decodeBody(t, res, &got)
	if len(got) != 2 || got[0].ID != 1 {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestListDiplomas_EmptyIsArray(t *testing.T) {
	_, h := newTestServer(t, &stubService{})

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/diplomas", nil))

	if body := strings.TrimSpace(res.Body.String()); body != "[]" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestListDiplomas_UpstreamError(t *testing.T) {
	_, h := newTestServer(t, &stubService{listErr: common.ErrorUpstream})

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/diplomas", nil))

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
}

func TestGetDiploma(t *testing.T) {
	svc := &stubService{items: []*diplomas.Diploma{{ID: 7, Title: "EMT-B", Category: diplomas.CategoryMedical}}}
	_, h := newTestServer(t, svc)

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/diplomas/7", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/diplomas/999", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing id, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/diplomas/abc", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-numeric id, got %d", res.Code)
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(fileContent); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestCreateDiploma_WithFile(t *testing.T) {
	svc := &stubService{}
	srv, h := newTestServer(t, svc)

	body, contentType := multipartBody(t, map[string]string{
		"title":       "CrossFit L1",
		"institution": "CrossFit Inc.",
		"year":        "2020",
		"category":    "fitness",
		"title_fr":    "CrossFit Niveau 1",
	}, "cert.pdf", []byte("%PDF-1.4 data"))

	req := httptest.NewRequest(http.MethodPost, "/diplomas", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(adminCookie(t, srv))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if svc.gotInput.Title != "CrossFit L1" || svc.gotInput.TitleFr == nil || *svc.gotInput.TitleFr != "CrossFit Niveau 1" {
		t.Fatalf("unexpected input: %+v", svc.gotInput)
	}
	if svc.gotInput.InstitutionFr != nil {
		t.Fatal("absent optional field must be nil")
	}
	if svc.gotUpload == nil || svc.gotUpload.Name != "cert.pdf" || svc.gotUpload.Size == 0 {
		t.Fatalf("unexpected upload: %+v", svc.gotUpload)
	}
	if svc.gotSession == "" {
		t.Fatal("session token not forwarded to service")
	}
}

func TestCreateDiploma_WithoutFile(t *testing.T) {
	svc := &stubService{}
	srv, h := newTestServer(t, svc)

	body, contentType := multipartBody(t, map[string]string{
		"title": "MBA", "institution": "HEC", "year": "2018", "category": "business",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/diplomas", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(adminCookie(t, srv))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.Code)
	}
	if svc.gotUpload != nil {
		t.Fatal("expected no upload for form without file part")
	}
}

func TestCreateDiploma_NoSession(t *testing.T) {
	svc := &stubService{createErr: common.ErrorUnauthorized}
	_, h := newTestServer(t, svc)

	body, contentType := multipartBody(t, map[string]string{"title": "x"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/diplomas", body)
	req.Header.Set("Content-Type", contentType)

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if svc.gotSession != "" {
		t.Fatalf("expected empty session without cookie, got %q", svc.gotSession)
	}
}

func TestCreateDiploma_ValidationMessageEchoed(t *testing.T) {
	svc := &stubService{createErr: fmt.Errorf("%w: missing required fields: title, year", common.ErrorValidation)}
	srv, h := newTestServer(t, svc)

	body, contentType := multipartBody(t, map[string]string{"institution": "HEC"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/diplomas", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(adminCookie(t, srv))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	var payload map[string]string
	decodeBody(t, res, &payload)
	if payload["error"] != "missing required fields: title, year" {
		t.Fatalf("unexpected error message: %q", payload["error"])
	}
}

func TestUpdateDiploma_Partial(t *testing.T) {
	svc := &stubService{}
	srv, h := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodPut, "/diplomas/3",
		strings.NewReader(`{"title":"CrossFit Level 2"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(adminCookie(t, srv))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if svc.gotUpdate.Title == nil || *svc.gotUpdate.Title != "CrossFit Level 2" {
		t.Fatalf("title not forwarded: %+v", svc.gotUpdate)
	}
	if svc.gotUpdate.Year != nil || svc.gotUpdate.Category != nil {
		t.Fatal("absent fields must stay nil")
	}
}

func TestUpdateDiploma_BadBody(t *testing.T) {
	srv, h := newTestServer(t, &stubService{})

	req := httptest.NewRequest(http.MethodPut, "/diplomas/3", strings.NewReader("{"))
	req.AddCookie(adminCookie(t, srv))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestDeleteDiploma(t *testing.T) {
	svc := &stubService{}
	srv, h := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/diplomas/5", nil)
	req.AddCookie(adminCookie(t, srv))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if svc.deletedID != 5 {
		t.Fatalf("expected delete of id 5, got %d", svc.deletedID)
	}
	var payload map[string]bool
	decodeBody(t, res, &payload)
	if !payload["success"] {
		t.Fatalf("unexpected body: %v", payload)
	}
}

func TestDeleteDiploma_NotFound(t *testing.T) {
	svc := &stubService{deleteErr: common.ErrorNotFound}
	srv, h := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/diplomas/99", nil)
	req.AddCookie(adminCookie(t, srv))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestLogin(t *testing.T) {
	srv, h := newTestServer(t, &stubService{})

	req := httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"password":"`+testPassword+`"}`))
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	cookies := res.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("session cookie not set")
	}
	if !session.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
	if session.SameSite != http.SameSiteStrictMode {
		t.Fatal("session cookie must be SameSite=Strict")
	}
	if session.MaxAge != int(time.Hour.Seconds()) {
		t.Fatalf("cookie Max-Age must match session TTL, got %d", session.MaxAge)
	}
	if !srv.sessions.Validate(session.Value) {
		t.Fatal("issued cookie does not validate")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	_, h := newTestServer(t, &stubService{})

	req := httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"password":"nope"}`))
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if len(res.Result().Cookies()) != 0 {
		t.Fatal("no cookie may be set on failed login")
	}
}

func TestLogin_MissingPassword(t *testing.T) {
	_, h := newTestServer(t, &stubService{})

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{}`))
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	_, h := newTestServer(t, &stubService{})

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/admin/logout", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired session cookie, got %+v", cookies)
	}
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	_, h := newTestServer(t, &stubService{})

	req := httptest.NewRequest(http.MethodOptions, "/diplomas", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	if got := res.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected configured origin to be allowed, got %q", got)
	}
	if res.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("credentials must be allowed for the cookie flow")
	}
}
