package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"athlete-clinical-history/internal/router"
)

func TestHTTP_EndToEnd_SharedConsultation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	// 1) Alta de clínico y atleta
	clinicianID := registerUser(t, ts.URL, map[string]any{
		"email":     "ana@club.com",
		"password":  "secret1",
		"full_name": "Ana Silva",
		"role":      "CLINICIAN",
	})
	athleteID := registerUser(t, ts.URL, map[string]any{
		"email":         "bruno@club.com",
		"password":      "secret1",
		"full_name":     "Bruno Costa",
		"role":          "ATHLETE",
		"date_of_birth": "2000-05-12",
	})
	otherAthleteID := registerUser(t, ts.URL, map[string]any{
		"email":     "carla@club.com",
		"password":  "secret1",
		"full_name": "Carla Mota",
		"role":      "ATHLETE",
	})

	// 2) Clínico crea caso + examen + lab para el atleta
	caseID := createResource(t, ts.URL, "/cases", clinicianID, "CLINICIAN", map[string]any{
		"athlete_id": athleteID,
		"title":      "ACL sprain",
		"diagnosis":  "Grade II",
	})
	casePath := "/cases/" + itoa(caseID)
	examID := createResource(t, ts.URL, casePath+"/exams", clinicianID, "CLINICIAN", map[string]any{
		"type":      "MRI",
		"body_part": "knee",
	})
	labID := createResource(t, ts.URL, casePath+"/labs", clinicianID, "CLINICIAN", map[string]any{
		"test_name": "CK",
		"result":    "310",
		"unit":      "U/L",
	})

	// 3) El atleta no puede emitir shares
	{
		st, _ := doReq(t, ts.URL, "POST", "/consults/share", athleteID, "ATHLETE", map[string]any{
			"athleteId":   athleteID,
			"permissions": map[string]any{"caseIds": []int64{caseID}},
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 share by athlete, got %d", st)
		}
	}

	// 4) IDs de otro atleta => rechazo sin emitir nada
	{
		st, _ := doReq(t, ts.URL, "POST", "/consults/share", clinicianID, "CLINICIAN", map[string]any{
			"athleteId":   otherAthleteID,
			"permissions": map[string]any{"caseIds": []int64{caseID}},
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for foreign case ids, got %d", st)
		}
	}

	// 5) Share válido con las tres categorías
	var share struct {
		ShareToken string `json:"shareToken"`
		AccessCode string `json:"accessCode"`
		FullLink   string `json:"fullLink"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/consults/share", clinicianID, "CLINICIAN", map[string]any{
			"athleteId": athleteID,
			"permissions": map[string]any{
				"caseIds": []int64{caseID},
				"examIds": []int64{examID},
				"labIds":  []int64{labID},
				"notes":   "control post-op",
			},
			"expiryHours": 24,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 share, got %d body=%s", st, string(body))
		}
		if err := json.Unmarshal(body, &share); err != nil {
			t.Fatalf("decode share response: %v", err)
		}
		if share.ShareToken == "" || len(share.AccessCode) != 6 {
			t.Fatalf("incomplete share response: %+v", share)
		}
	}

	viewPath := "/consults/view/" + share.ShareToken

	// 6) Resolución pública, sin headers de auth
	{
		st, body := doReq(t, ts.URL, "GET", viewPath+"?accessCode="+share.AccessCode, 0, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 view, got %d body=%s", st, string(body))
		}

		var view struct {
			Meta struct {
				SharedBy    string `json:"sharedBy"`
				PatientName string `json:"patientName"`
				Notes       string `json:"notes"`
			} `json:"meta"`
			Data struct {
				Cases []struct {
					ID int64 `json:"id"`
				} `json:"cases"`
				Exams []json.RawMessage `json:"exams"`
				Labs  []json.RawMessage `json:"labs"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &view); err != nil {
			t.Fatalf("decode view: %v", err)
		}
		if view.Meta.SharedBy != "Ana Silva" || view.Meta.PatientName != "Bruno Costa" {
			t.Fatalf("unexpected meta: %+v", view.Meta)
		}
		if len(view.Data.Cases) != 1 || view.Data.Cases[0].ID != caseID {
			t.Fatalf("expected exactly case %d, got %+v", caseID, view.Data.Cases)
		}
		if len(view.Data.Exams) != 1 || len(view.Data.Labs) != 1 {
			t.Fatalf("expected 1 exam and 1 lab, got %d/%d", len(view.Data.Exams), len(view.Data.Labs))
		}
	}

	// 7) Código equivocado => 403; token desconocido => 404; corto => 400
	{
		wrong := "000000"
		if wrong == share.AccessCode {
			wrong = "000001"
		}
		if st, _ := doReq(t, ts.URL, "GET", viewPath+"?accessCode="+wrong, 0, "", nil); st != http.StatusForbidden {
			t.Fatalf("expected 403 wrong code, got %d", st)
		}
		if st, _ := doReq(t, ts.URL, "GET", "/consults/view/deadbeefdeadbeef?accessCode="+share.AccessCode, 0, "", nil); st != http.StatusNotFound {
			t.Fatalf("expected 404 unknown token, got %d", st)
		}
		if st, _ := doReq(t, ts.URL, "GET", "/consults/view/abc?accessCode="+share.AccessCode, 0, "", nil); st != http.StatusBadRequest {
			t.Fatalf("expected 400 short token, got %d", st)
		}
	}

	// 8) El link sigue vivo después de resolverse (no es one-time-use)
	{
		st, _ := doReq(t, ts.URL, "GET", viewPath+"?accessCode="+share.AccessCode, 0, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on second resolve, got %d", st)
		}
	}
}

func TestHTTP_Share_ValidationErrors(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	clinicianID := registerUser(t, ts.URL, map[string]any{
		"email":     "ana@club.com",
		"password":  "secret1",
		"full_name": "Ana Silva",
		"role":      "CLINICIAN",
	})
	athleteID := registerUser(t, ts.URL, map[string]any{
		"email":     "bruno@club.com",
		"password":  "secret1",
		"full_name": "Bruno Costa",
		"role":      "ATHLETE",
	})

	// Permisos vacíos
	if st, _ := doReq(t, ts.URL, "POST", "/consults/share", clinicianID, "CLINICIAN", map[string]any{
		"athleteId":   athleteID,
		"permissions": map[string]any{},
	}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 empty permissions, got %d", st)
	}

	// expiryHours fuera de rango
	if st, _ := doReq(t, ts.URL, "POST", "/consults/share", clinicianID, "CLINICIAN", map[string]any{
		"athleteId":   athleteID,
		"permissions": map[string]any{"caseIds": []int64{1}},
		"expiryHours": 200,
	}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 expiryHours=200, got %d", st)
	}

	// Atleta inexistente
	if st, _ := doReq(t, ts.URL, "POST", "/consults/share", clinicianID, "CLINICIAN", map[string]any{
		"athleteId":   99999,
		"permissions": map[string]any{"caseIds": []int64{1}},
	}); st != http.StatusNotFound {
		t.Fatalf("expected 404 unknown athlete, got %d", st)
	}

	// El target es staff, no atleta
	if st, _ := doReq(t, ts.URL, "POST", "/consults/share", clinicianID, "CLINICIAN", map[string]any{
		"athleteId":   clinicianID,
		"permissions": map[string]any{"caseIds": []int64{1}},
	}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 non-athlete target, got %d", st)
	}
}

// -------------------------
// Helpers
// -------------------------

func registerUser(t *testing.T, base string, payload map[string]any) int64 {
	t.Helper()

	st, body := doReq(t, base, "POST", "/auth/register", 0, "", payload)
	if st != http.StatusCreated {
		t.Fatalf("register failed: %d body=%s", st, string(body))
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.ID <= 0 {
		t.Fatalf("bad register response: %s", string(body))
	}
	return resp.ID
}

func createResource(t *testing.T, base, path string, userID int64, role string, payload map[string]any) int64 {
	t.Helper()

	st, body := doReq(t, base, "POST", path, userID, role, payload)
	if st != http.StatusCreated {
		t.Fatalf("create %s failed: %d body=%s", path, st, string(body))
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.ID <= 0 {
		t.Fatalf("bad create response for %s: %s", path, string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, base, method, path string, userID int64, role string, payload map[string]any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, base+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req.Header.Set("X-Debug-User-ID", itoa(userID))
		if role != "" {
			req.Header.Set("X-Debug-Role", role)
		}
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, raw
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
