package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/training-records-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/training-records-backend/internal/pkg/storage"
	"github.com/cmlabs-hris/training-records-backend/internal/repository/memory"
	authService "github.com/cmlabs-hris/training-records-backend/internal/service/auth"
	employeeService "github.com/cmlabs-hris/training-records-backend/internal/service/employee"
	"github.com/cmlabs-hris/training-records-backend/internal/service/file"
	trainingService "github.com/cmlabs-hris/training-records-backend/internal/service/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestAccessExp = "1h"
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestMaxUpload = 64 * 1024
)

type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	employeeRepo := memory.NewEmployeeRepository(store)
	trainingRepo := memory.NewTrainingRepository(store)

	local, err := storage.NewLocalStorage(t.TempDir(), "/assets/employee-images")
	require.NoError(t, err)
	files := file.NewFileService(local, handlerTestMaxUpload)

	adminHash, err := authService.HashPassword("admin")
	require.NoError(t, err)
	jwtService := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)

	router := NewRouter(
		RouterOptions{
			Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
			AllowedOrigins: []string{"http://localhost:3000"},
			AssetsURL:      "/assets/employee-images",
			AssetsDir:      local.BasePath(),
		},
		jwtService,
		NewAuthHandler(authService.NewAuthService(employeeRepo, authService.NewStaticAdminStore("admin", adminHash), jwtService)),
		NewEmployeeHandler(employeeService.NewEmployeeService(employeeRepo, trainingRepo, store, files, "admin12345"), handlerTestMaxUpload),
		NewTrainingHandler(trainingService.NewTrainingService(trainingRepo, files), handlerTestMaxUpload),
	)
	return &testServer{handler: router}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = strings.NewReader(raw)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(b)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req)
}

type filePart struct {
	field, name string
	content     []byte
}

func (s *testServer) multipart(t *testing.T, method, path string, fields map[string]string, part *filePart) *httptest.ResponseRecorder {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if part != nil {
		fw, err := mw.CreateFormFile(part.field, part.name)
		require.NoError(t, err)
		_, err = fw.Write(part.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(t, req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func (s *testServer) createEmployee(t *testing.T, username string) int64 {
	t.Helper()
	return s.createNamedEmployee(t, username, "Andres", "Bonifacio", "De Castro")
}

func (s *testServer) createNamedEmployee(t *testing.T, username, first, last, middle string) int64 {
	t.Helper()
	rec := s.json(t, http.MethodPost, "/employees/add", map[string]interface{}{
		"firstName":  first,
		"lastName":   last,
		"middleName": middle,
		"position":   "Supremo",
		"profile":    map[string]string{"username": username},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	return int64(body["employeeId"].(float64))
}

func trainingFields(employeeID int64) map[string]string {
	return map[string]string{
		"training_name":  "Leadership 101",
		"description":    "Participation",
		"trainer_name":   "Apolinario",
		"date_attended":  "2024-06-10",
		"date_completed": "2024-06-12",
		"employee_id":    fmt.Sprint(employeeID),
	}
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is working!", rec.Body.String())
}

func TestListEmployees_EmptyArray(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(t, http.MethodGet, "/employees", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateAndGetEmployee(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "abonifacio")

	rec := s.json(t, http.MethodGet, fmt.Sprintf("/employees/%d", id), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])

	emp := body["employee"].(map[string]interface{})
	assert.Equal(t, float64(id), emp["employee_id"])
	assert.Equal(t, "Andres", emp["first_name"])
	assert.Equal(t, "abonifacio", emp["username"])
	assert.NotContains(t, emp, "password")
	assert.Nil(t, emp["birthday"])
	assert.Equal(t, []interface{}{}, body["training"])

	rec = s.json(t, http.MethodGet, "/employees", nil, "")
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Supremo", list[0]["position"])

	rec = s.json(t, http.MethodGet, fmt.Sprintf("/employeeDetailPage/%d", id), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "employeeDetails")

	rec = s.json(t, http.MethodGet, fmt.Sprintf("/viewEmployeeProfile/%d", id), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode(t, rec)
	details := view["employeeDetails"].(map[string]interface{})
	assert.Equal(t, "abonifacio", details["username"])
	assert.NotContains(t, details, "email")
	assert.Equal(t, []interface{}{}, view["trainingDetails"])
}

func TestCreateEmployee_Errors(t *testing.T) {
	s := newTestServer(t)
	s.createEmployee(t, "abonifacio")

	rec := s.json(t, http.MethodPost, "/employees/add", map[string]interface{}{
		"firstName": "Emilio", "lastName": "Jacinto", "middleName": "D", "position": "Writer",
		"profile": map[string]string{"username": "abonifacio"},
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = s.json(t, http.MethodPost, "/employees/add", map[string]interface{}{"firstName": "Emilio"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := decode(t, rec)["details"].(map[string]interface{})
	assert.Contains(t, details, "profile.username")

	rec = s.json(t, http.MethodPost, "/employees/add", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEmployee_BadAndMissingIDs(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/employees/abc", "/employees/0", "/employees/-3", "/employeeDetailPage/1.5"} {
		rec := s.json(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	for _, path := range []string{"/employees/999", "/employeeDetailPage/999", "/viewEmployeeProfile/999"} {
		rec := s.json(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, false, decode(t, rec)["success"])
	}
}

func TestAddTraining_MultipartWithCertificate(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "abonifacio")
	cert := []byte("%PDF-1.5\n\x00\xff certificate")

	rec := s.multipart(t, http.MethodPost, "/training/add", trainingFields(id), &filePart{"imgCert", "cert.pdf", cert})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Positive(t, body["trainingId"].(float64))
	ref := body["imgCert"].(string)

	rec = s.json(t, http.MethodGet, fmt.Sprintf("/employees/%d/training", id), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode(t, rec)["trainingDetails"].([]interface{})
	require.Len(t, records, 1)
	record := records[0].(map[string]interface{})
	assert.Equal(t, ref, record["imgCert"])
	assert.Equal(t, "Participation", record["description"])

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/assets/employee-images/"+ref, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cert, rec.Body.Bytes())

	rec = s.json(t, http.MethodGet, "/training/all", nil, "")
	all := decode(t, rec)["trainingDetails"].([]interface{})
	require.Len(t, all, 1)
	assert.Equal(t, "Andres", all[0].(map[string]interface{})["first_name"])
}

func TestAddTraining_JSONWithoutCertificate(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "abonifacio")

	rec := s.json(t, http.MethodPost, "/training/add", map[string]interface{}{
		"training_name":  "Go",
		"description":    "Completed",
		"trainer_name":   "Rob",
		"date_attended":  "2024-01-01",
		"date_completed": "2024-01-02",
		"employee_id":    id,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode(t, rec)["imgCert"])
}

func TestAddTraining_Errors(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "abonifacio")

	rec := s.multipart(t, http.MethodPost, "/training/add", trainingFields(4040), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	fields := trainingFields(id)
	fields["description"] = "Finished"
	rec = s.multipart(t, http.MethodPost, "/training/add", fields, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	big := bytes.Repeat([]byte("a"), handlerTestMaxUpload+formOverhead+1)
	rec = s.multipart(t, http.MethodPost, "/training/add", trainingFields(id), &filePart{"imgCert", "cert.pdf", big})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = s.json(t, http.MethodGet, fmt.Sprintf("/employees/%d/training", id), nil, "")
	assert.Empty(t, decode(t, rec)["trainingDetails"])
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "abonifacio")

	rec := s.json(t, http.MethodPost, "/employees/login", map[string]string{"username": "abonifacio", "password": "admin12345"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, float64(id), body["employeeId"])
	token := body["accessToken"].(string)

	rec = s.json(t, http.MethodGet, "/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decode(t, rec)["employeeDetails"].(map[string]interface{})
	assert.Equal(t, float64(id), me["employee_id"])

	rec = s.json(t, http.MethodGet, "/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.json(t, http.MethodGet, "/me", nil, "not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.json(t, http.MethodPost, "/employees/login", map[string]string{"username": "abonifacio", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = s.json(t, http.MethodPost, "/employees/login", map[string]string{"username": "nobody", "password": "admin12345"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(t, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "admin"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode(t, rec)["accessToken"].(string)

	// /me belongs to employees
	rec = s.json(t, http.MethodGet, "/me", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.json(t, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "abonifacio")

	rec := s.json(t, http.MethodPut, fmt.Sprintf("/employees/updateProfile/%d", id), map[string]interface{}{
		"birthday":      "1863-11-30",
		"office":        "Tondo",
		"religion":      "Catholic",
		"email":         "andres@katipunan.ph",
		"age":           "33",
		"mobile_number": "+63 912 345 6789",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.json(t, http.MethodGet, fmt.Sprintf("/employees/%d", id), nil, "")
	emp := decode(t, rec)["employee"].(map[string]interface{})
	assert.Equal(t, "1863-11-30", emp["birthday"])
	assert.Equal(t, float64(33), emp["age"])
	assert.Equal(t, "Tondo", emp["office"])

	rec = s.json(t, http.MethodPut, "/employees/updateProfile/999", map[string]interface{}{"office": "X"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.json(t, http.MethodPut, fmt.Sprintf("/employees/updateProfile/%d", id), map[string]interface{}{"age": "old"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAvatarUploadAndClear(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "abonifacio")
	path := fmt.Sprintf("/updateEmployeeProfile/%d", id)

	rec := s.multipart(t, http.MethodPost, path, nil, &filePart{"image", "me.png", []byte("png bytes")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ref := decode(t, rec)["picture_filename"].(string)
	assert.True(t, strings.HasSuffix(ref, "-me.png"))

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/assets/employee-images/"+ref, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// no image part stores null and removes the old file
	rec = s.multipart(t, http.MethodPost, path, map[string]string{"note": "x"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode(t, rec)["picture_filename"])

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/assets/employee-images/"+ref, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.multipart(t, http.MethodPost, path, nil, &filePart{"image", "me.exe", []byte("MZ")})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdatePictureReference(t *testing.T) {
	s := newTestServer(t)
	id := s.createEmployee(t, "abonifacio")
	path := fmt.Sprintf("/updateEmployeeProfile/%d", id)

	rec := s.json(t, http.MethodPut, path, map[string]interface{}{"picture_filename": "missing.png"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.multipart(t, http.MethodPost, "/training/add", trainingFields(id), &filePart{"imgCert", "photo.png", []byte("\x89PNG\r\n\x1a\nimg")})
	require.Equal(t, http.StatusOK, rec.Code)
	ref := decode(t, rec)["imgCert"].(string)

	rec = s.multipart(t, http.MethodPost, "/training/add", trainingFields(id), &filePart{"imgCert", "cert.pdf", []byte("%PDF-1.4 cert")})
	require.Equal(t, http.StatusOK, rec.Code)
	pdf := decode(t, rec)["imgCert"].(string)

	rec = s.json(t, http.MethodPut, path, map[string]interface{}{"picture_filename": pdf}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	oversized := `{"picture_filename":"` + strings.Repeat("a", int(inlineRefLimit(handlerTestMaxUpload))) + `"}`
	rec = s.json(t, http.MethodPut, path, oversized, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = s.json(t, http.MethodPut, path, map[string]interface{}{"picture_filename": ref}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ref, decode(t, rec)["picture_filename"])

	rec = s.json(t, http.MethodPut, path, map[string]interface{}{"picture_filename": nil}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["picture_filename"])
}

func TestListAllTraining_CarriesEachOwnersName(t *testing.T) {
	s := newTestServer(t)
	a := s.createNamedEmployee(t, "jrizal", "Jose", "Rizal", "Protacio")
	b := s.createNamedEmployee(t, "amabini", "Apolinario", "Mabini", "Maranan")

	for _, id := range []int64{a, a, b} {
		rec := s.multipart(t, http.MethodPost, "/training/add", trainingFields(id), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.json(t, http.MethodGet, "/training/all", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode(t, rec)["trainingDetails"].([]interface{})
	require.Len(t, all, 3)

	names := map[int64][3]string{
		a: {"Jose", "Rizal", "Protacio"},
		b: {"Apolinario", "Mabini", "Maranan"},
	}
	perEmployee := map[int64]int{}
	for _, item := range all {
		row := item.(map[string]interface{})
		owner := int64(row["employee_id"].(float64))
		want, ok := names[owner]
		require.True(t, ok, "unexpected owner %d", owner)
		assert.Equal(t, want[0], row["first_name"])
		assert.Equal(t, want[1], row["last_name"])
		assert.Equal(t, want[2], row["middle_name"])
		perEmployee[owner]++
	}
	assert.Equal(t, map[int64]int{a: 2, b: 1}, perEmployee)
}

func TestLogin_OversizedBody(t *testing.T) {
	s := newTestServer(t)

	body := `{"username":"admin","password":"` + strings.Repeat("x", maxJSONBody) + `"}`
	rec := s.json(t, http.MethodPost, "/admin/login", body, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDeleteEmployee(t *testing.T) {
	s := newTestServer(t)
	keep := s.createEmployee(t, "keeper")
	id := s.createEmployee(t, "abonifacio")

	for i := 0; i < 2; i++ {
		rec := s.multipart(t, http.MethodPost, "/training/add", trainingFields(id), nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := s.multipart(t, http.MethodPost, "/training/add", trainingFields(keep), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(t, http.MethodDelete, fmt.Sprintf("/employees/%d", id), nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.json(t, http.MethodGet, fmt.Sprintf("/employees/%d", id), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.json(t, http.MethodGet, "/training/all", nil, "")
	all := decode(t, rec)["trainingDetails"].([]interface{})
	require.Len(t, all, 1)
	assert.Equal(t, float64(keep), all[0].(map[string]interface{})["employee_id"])

	rec = s.json(t, http.MethodDelete, fmt.Sprintf("/employees/%d", id), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the username is free again
	s.createEmployee(t, "abonifacio")
}

func TestAssets_NoDirectoryListing(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/assets/employee-images/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
