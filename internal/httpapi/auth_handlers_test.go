package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"guardpost.dev/internal/auth"
)

func decodeAuthResponse(t *testing.T, body []byte) auth.AuthResponse {
	t.Helper()
	var resp auth.AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal response: %v (%s)", err, body)
	}
	return resp
}

func TestSignUp(t *testing.T) {
	store := newFakeStore()
	seedRoles(store)
	api, codec := newTestAPI(t, store)
	h := api.Handler()

	rec := doRequest(h, http.MethodPost, "/auth/sign-up", "",
		`{"username":"maria","password":"s3cret","roleNames":["ADMIN"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	resp := decodeAuthResponse(t, rec.Body.Bytes())
	if resp.Username != "maria" || !resp.Status || resp.JWT == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	claims, err := codec.Verify(resp.JWT)
	if err != nil {
		t.Fatalf("Verify issued token: %v", err)
	}
	if claims.Subject != "maria" {
		t.Fatalf("subject = %q, want maria", claims.Subject)
	}

	saved := store.users["maria"]
	if saved == nil {
		t.Fatal("user not persisted")
	}
	if saved.PasswordHash == "s3cret" {
		t.Fatal("password stored in plaintext")
	}
	if !saved.Enabled || !saved.AccountNonLocked {
		t.Fatalf("account flags not set: %+v", saved)
	}
}

func TestSignUpDropsUnknownRoles(t *testing.T) {
	store := newFakeStore()
	seedRoles(store)
	api, codec := newTestAPI(t, store)
	h := api.Handler()

	rec := doRequest(h, http.MethodPost, "/auth/sign-up", "",
		`{"username":"maria","password":"s3cret","roleNames":["ADMIN","NOPE"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	resp := decodeAuthResponse(t, rec.Body.Bytes())
	claims, err := codec.Verify(resp.JWT)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	for _, a := range claims.AuthorityList() {
		if a == "ROLE_NOPE" {
			t.Fatalf("unknown role leaked into authorities: %v", claims.AuthorityList())
		}
	}
	if saved := store.users["maria"]; len(saved.Roles) != 1 || saved.Roles[0].Name != auth.RoleAdmin {
		t.Fatalf("roles = %+v, want just ADMIN", saved.Roles)
	}
}

func TestSignUpAllRolesUnknown(t *testing.T) {
	store := newFakeStore()
	seedRoles(store)
	api, _ := newTestAPI(t, store)
	h := api.Handler()

	rec := doRequest(h, http.MethodPost, "/auth/sign-up", "",
		`{"username":"maria","password":"s3cret","roleNames":["NOPE","NADA"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestSignUpTooManyRoles(t *testing.T) {
	store := newFakeStore()
	seedRoles(store)
	api, _ := newTestAPI(t, store)
	h := api.Handler()

	rec := doRequest(h, http.MethodPost, "/auth/sign-up", "",
		`{"username":"maria","password":"s3cret","roleNames":["ADMIN","USER","INVITED","DEVELOPER"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestSignUpValidation(t *testing.T) {
	store := newFakeStore()
	seedRoles(store)
	api, _ := newTestAPI(t, store)
	h := api.Handler()

	cases := []struct {
		name string
		body string
	}{
		{"missing body", ""},
		{"blank username", `{"username":"  ","password":"x","roleNames":["ADMIN"]}`},
		{"blank password", `{"username":"maria","password":"","roleNames":["ADMIN"]}`},
		{"unknown field", `{"username":"maria","password":"x","role_names":["ADMIN"]}`},
		{"trailing garbage", `{"username":"maria","password":"x"} extra`},
	}
	for _, tc := range cases {
		rec := doRequest(h, http.MethodPost, "/auth/sign-up", "", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
		}
	}
}

func TestSignUpMethodNotAllowed(t *testing.T) {
	store := newFakeStore()
	seedRoles(store)
	api, _ := newTestAPI(t, store)
	h := api.Handler()

	rec := doRequest(h, http.MethodGet, "/auth/sign-up", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodPost {
		t.Fatalf("Allow = %q, want POST", got)
	}
}

func TestLogIn(t *testing.T) {
	store := newFakeStore()
	seedRoles(store)
	seedUser(store, "Johan", "1234", auth.RoleAdmin)
	api, codec := newTestAPI(t, store)
	h := api.Handler()

	rec := doRequest(h, http.MethodPost, "/auth/log-in", "",
		`{"username":"Johan","password":"1234"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	resp := decodeAuthResponse(t, rec.Body.Bytes())
	if resp.Username != "Johan" || !resp.Status || resp.JWT == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	claims, err := codec.Verify(resp.JWT)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	authorities := claims.AuthorityList()
	want := map[string]bool{"ROLE_ADMIN": true, "CREATE": true, "READ": true, "UPDATE": true, "DELETE": true}
	if len(authorities) != len(want) {
		t.Fatalf("authorities = %v", authorities)
	}
	for _, a := range authorities {
		if !want[a] {
			t.Fatalf("unexpected authority %q in %v", a, authorities)
		}
	}
}

// Unknown usernames, wrong passwords and blocked accounts must all produce
// the same 401 body, otherwise the endpoint enumerates usernames.
func TestLogInFailuresAreUniform(t *testing.T) {
	store := newFakeStore()
	seedRoles(store)
	seedUser(store, "Johan", "1234", auth.RoleAdmin)
	seedUser(store, "Frozen", "1234", auth.RoleUser)
	store.users["Frozen"].Enabled = false
	api, _ := newTestAPI(t, store)
	h := api.Handler()

	bodies := make(map[string]string)
	for name, payload := range map[string]string{
		"unknown user":   `{"username":"ghost","password":"1234"}`,
		"wrong password": `{"username":"Johan","password":"wrong"}`,
		"disabled user":  `{"username":"Frozen","password":"1234"}`,
	} {
		rec := doRequest(h, http.MethodPost, "/auth/log-in", "", payload)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, rec.Code)
		}
		var parsed map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("%s: unmarshal: %v", name, err)
		}
		bodies[name], _ = parsed["error"].(string)
	}
	if bodies["unknown user"] != bodies["wrong password"] || bodies["wrong password"] != bodies["disabled user"] {
		t.Fatalf("failure messages differ: %v", bodies)
	}
	if bodies["unknown user"] != credentialFailureMessage {
		t.Fatalf("message = %q, want %q", bodies["unknown user"], credentialFailureMessage)
	}
}

func TestLogInValidation(t *testing.T) {
	store := newFakeStore()
	api, _ := newTestAPI(t, store)
	h := api.Handler()

	rec := doRequest(h, http.MethodPost, "/auth/log-in", "", `{"username":"","password":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = doRequest(h, http.MethodGet, "/auth/log-in", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	store := newFakeStore()
	api, _ := newTestAPI(t, store)
	h := api.Handler()

	rec := doRequest(h, http.MethodGet, "/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
