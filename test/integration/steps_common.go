package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte

	currentUser   string
	cookies       map[string]*http.Cookie
	credentialIDs map[string]int64
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:            tc,
		cookies:       make(map[string]*http.Cookie),
		credentialIDs: make(map[string]int64),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a credstore server is running$`, s.aCredstoreServerIsRunning)
	sc.Step(`^an account "([^"]*)" exists with password "([^"]*)"$`, s.anAccountExistsWithPassword)

	// Authentication steps
	sc.Step(`^I register "([^"]*)" with password "([^"]*)"$`, s.iRegisterWithPassword)
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInAsWithPassword)
	sc.Step(`^I am logged in as "([^"]*)" with password "([^"]*)"$`, s.iAmLoggedInAsWithPassword)
	sc.Step(`^I corrupt my session cookie$`, s.iCorruptMySessionCookie)
	sc.Step(`^I log out$`, s.iLogOut)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should set a session cookie$`, s.theResponseShouldSetASessionCookie)
	sc.Step(`^the response should not set a session cookie$`, s.theResponseShouldNotSetASessionCookie)

	// Vault steps
	sc.Step(`^I store a credential for service "([^"]*)" with username "([^"]*)" and secret "([^"]*)"$`, s.iStoreACredential)
	sc.Step(`^I list my credentials$`, s.iListMyCredentials)
	sc.Step(`^I search my credentials for "([^"]*)"$`, s.iSearchMyCredentialsFor)
	sc.Step(`^the list should contain service "([^"]*)"$`, s.theListShouldContainService)
	sc.Step(`^the list should not contain service "([^"]*)"$`, s.theListShouldNotContainService)
	sc.Step(`^I update that credential with secret "([^"]*)"$`, s.iUpdateThatCredentialWithSecret)
	sc.Step(`^I delete that credential$`, s.iDeleteThatCredential)
	sc.Step(`^I delete the credential stored by "([^"]*)"$`, s.iDeleteTheCredentialStoredBy)
}

// Background steps

func (s *StepsContext) aCredstoreServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) anAccountExistsWithPassword(email, password string) error {
	resp, err := s.doJSON("POST", "/auth/register",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// 409 means the account survived from a previous scenario, fine either way
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to register %s: status %d: %s", email, resp.StatusCode, body)
	}
	return nil
}

// Authentication steps

func (s *StepsContext) iRegisterWithPassword(email, password string) error {
	return s.record(s.doJSON("POST", "/auth/register",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), nil))
}

func (s *StepsContext) iLogInAsWithPassword(email, password string) error {
	err := s.record(s.doJSON("POST", "/auth/login",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), nil))
	if err != nil {
		return err
	}

	s.currentUser = email
	for _, c := range s.response.Cookies() {
		if c.Name == s.tc.Codec.CookieName() && c.Value != "" {
			s.cookies[email] = c
		}
	}
	return nil
}

func (s *StepsContext) iAmLoggedInAsWithPassword(email, password string) error {
	if err := s.iLogInAsWithPassword(email, password); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("login as %s failed: status %d: %s", email, s.response.StatusCode, s.responseBody)
	}
	if s.cookies[email] == nil {
		return fmt.Errorf("login as %s did not set a session cookie", email)
	}
	return nil
}

func (s *StepsContext) iCorruptMySessionCookie() error {
	cookie := s.cookies[s.currentUser]
	if cookie == nil {
		return fmt.Errorf("no session cookie for %s", s.currentUser)
	}

	raw := []byte(cookie.Value)
	mid := len(raw) / 2
	if raw[mid] == 'A' {
		raw[mid] = 'B'
	} else {
		raw[mid] = 'A'
	}
	cookie.Value = string(raw)
	return nil
}

func (s *StepsContext) iLogOut() error {
	err := s.record(s.doJSON("GET", "/auth/logout", "", s.cookies[s.currentUser]))
	if err != nil {
		return err
	}
	delete(s.cookies, s.currentUser)
	return nil
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseShouldSetASessionCookie() error {
	for _, c := range s.response.Cookies() {
		if c.Name == s.tc.Codec.CookieName() && c.Value != "" {
			return nil
		}
	}
	return fmt.Errorf("expected a session cookie in the response")
}

func (s *StepsContext) theResponseShouldNotSetASessionCookie() error {
	for _, c := range s.response.Cookies() {
		if c.Name == s.tc.Codec.CookieName() && c.Value != "" {
			return fmt.Errorf("unexpected session cookie in the response")
		}
	}
	return nil
}

// Vault steps

func (s *StepsContext) iStoreACredential(service, username, secret string) error {
	err := s.record(s.doJSON("POST", "/credentials",
		fmt.Sprintf(`{"service":%q,"username":%q,"secret":%q}`, service, username, secret),
		s.cookies[s.currentUser]))
	if err != nil {
		return err
	}

	if s.response.StatusCode == http.StatusCreated {
		var body map[string]int64
		if err := json.Unmarshal(s.responseBody, &body); err != nil {
			return fmt.Errorf("failed to parse create response: %w", err)
		}
		s.credentialIDs[s.currentUser] = body["id"]
	}
	return nil
}

func (s *StepsContext) iListMyCredentials() error {
	return s.record(s.doJSON("GET", "/credentials", "", s.cookies[s.currentUser]))
}

func (s *StepsContext) iSearchMyCredentialsFor(term string) error {
	return s.record(s.doJSON("GET", "/credentials?search="+term, "", s.cookies[s.currentUser]))
}

func (s *StepsContext) theListShouldContainService(service string) error {
	found, err := s.listContainsService(service)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("expected service %q in listing: %s", service, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theListShouldNotContainService(service string) error {
	found, err := s.listContainsService(service)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("unexpected service %q in listing: %s", service, s.responseBody)
	}
	return nil
}

func (s *StepsContext) iUpdateThatCredentialWithSecret(secret string) error {
	id := s.credentialIDs[s.currentUser]
	return s.record(s.doJSON("PUT", fmt.Sprintf("/credentials/%d", id),
		fmt.Sprintf(`{"service":"github","username":"updated","secret":%q}`, secret),
		s.cookies[s.currentUser]))
}

func (s *StepsContext) iDeleteThatCredential() error {
	id := s.credentialIDs[s.currentUser]
	return s.record(s.doJSON("DELETE", fmt.Sprintf("/credentials/%d", id), "", s.cookies[s.currentUser]))
}

func (s *StepsContext) iDeleteTheCredentialStoredBy(owner string) error {
	id, ok := s.credentialIDs[owner]
	if !ok {
		return fmt.Errorf("no credential recorded for %s", owner)
	}
	return s.record(s.doJSON("DELETE", fmt.Sprintf("/credentials/%d", id), "", s.cookies[s.currentUser]))
}

// Helpers

func (s *StepsContext) doJSON(method, path, body string, cookie *http.Cookie) (*http.Response, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	// Logout redirects to the status page; keep the 303 visible to the steps.
	client := &http.Client{
		Timeout: s.tc.HTTPClient.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return client.Do(req)
}

func (s *StepsContext) record(resp *http.Response, err error) error {
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	s.response = resp
	s.responseBody = body
	return nil
}

func (s *StepsContext) listContainsService(service string) (bool, error) {
	if s.response == nil {
		return false, fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != http.StatusOK {
		return false, fmt.Errorf("listing failed: status %d: %s", s.response.StatusCode, s.responseBody)
	}

	var list []struct {
		Service string `json:"service"`
	}
	if err := json.Unmarshal(s.responseBody, &list); err != nil {
		return false, fmt.Errorf("failed to parse listing: %w", err)
	}

	for _, entry := range list {
		if entry.Service == service {
			return true, nil
		}
	}
	return false, nil
}
