package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// FormResponse — форма из API.
type FormResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// FormVersionResponse — версия формы из API.
type FormVersionResponse struct {
	FormID    string         `json:"form_id"`
	Version   int            `json:"version"`
	Structure map[string]any `json:"structure"`
	CreatedAt string         `json:"created_at"`
}

// StageRecordResponse — пройденный этап заявки.
type StageRecordResponse struct {
	StageID      int            `json:"stage_id"`
	TransitionID int            `json:"stage_transition_id"`
	Values       map[string]any `json:"values,omitempty"`
	SubmittedAt  string         `json:"submitted_at"`
}

// EntryResponse — заявка из API.
type EntryResponse struct {
	ID             string                `json:"id"`
	PublicID       string                `json:"public_identifier"`
	FormID         string                `json:"form_id"`
	Version        int                   `json:"form_version"`
	CurrentStageID int                   `json:"current_stage_id"`
	IsComplete     bool                  `json:"is_complete"`
	Stages         []StageRecordResponse `json:"stages,omitempty"`
	CreatedAt      string                `json:"created_at"`
	UpdatedAt      string                `json:"updated_at"`
}

// SubmitResultResponse — результат submit этапа.
type SubmitResultResponse struct {
	EntryID        string `json:"entry_id"`
	PublicID       string `json:"public_identifier"`
	IsComplete     bool   `json:"is_complete"`
	CurrentStageID int    `json:"current_stage_id,omitempty"`
}

// --- Request types ---

// UpdateFormRequest — обновление формы.
type UpdateFormRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// FieldValue — значение поля при submit.
type FieldValue struct {
	FieldID int `json:"field_id"`
	Value   any `json:"value"`
}

// CreateEntryRequest — первый submit формы.
type CreateEntryRequest struct {
	Version     int          `json:"form_version,omitempty"`
	FieldValues []FieldValue `json:"field_values"`
}

// SubmitStageRequest — submit очередного этапа.
type SubmitStageRequest struct {
	FieldValues []FieldValue `json:"field_values"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code        string            `json:"code"`
		Message     string            `json:"message"`
		FieldErrors map[string]string `json:"field_errors,omitempty"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Anketa API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Forms ---

// ListForms возвращает все формы.
func (c *Client) ListForms() ([]FormResponse, error) {
	var forms []FormResponse
	err := c.list("/api/v1/forms", nil, &forms)
	return forms, err
}

// CreateForm создаёт новую форму.
func (c *Client) CreateForm(name string) (*FormResponse, error) {
	body := map[string]string{"name": name}
	var form FormResponse
	err := c.post("/api/v1/forms", body, &form)
	return &form, err
}

// GetForm возвращает форму по ID.
func (c *Client) GetForm(id string) (*FormResponse, error) {
	var form FormResponse
	err := c.get("/api/v1/forms/"+id, &form)
	return &form, err
}

// UpdateForm обновляет форму.
func (c *Client) UpdateForm(id string, req UpdateFormRequest) (*FormResponse, error) {
	var form FormResponse
	err := c.put("/api/v1/forms/"+id, req, &form)
	return &form, err
}

// DeleteForm удаляет форму.
func (c *Client) DeleteForm(id string) error {
	return c.delete("/api/v1/forms/" + id)
}

// ListVersions возвращает версии формы.
func (c *Client) ListVersions(formID string) ([]FormVersionResponse, error) {
	var versions []FormVersionResponse
	err := c.list("/api/v1/forms/"+formID+"/versions", nil, &versions)
	return versions, err
}

// PublishVersion создаёт новую версию структуры формы.
func (c *Client) PublishVersion(formID string, structure json.RawMessage) (*FormVersionResponse, error) {
	body := map[string]json.RawMessage{"structure": structure}
	var version FormVersionResponse
	err := c.post("/api/v1/forms/"+formID+"/versions", body, &version)
	return &version, err
}

// GetVersion возвращает конкретную версию формы.
func (c *Client) GetVersion(formID string, version int) (*FormVersionResponse, error) {
	var v FormVersionResponse
	err := c.get("/api/v1/forms/"+formID+"/versions/"+strconv.Itoa(version), &v)
	return &v, err
}

// --- Entries ---

// CreateEntry отправляет начальный этап формы и создаёт заявку.
func (c *Client) CreateEntry(formID string, req CreateEntryRequest) (*SubmitResultResponse, error) {
	var result SubmitResultResponse
	err := c.post("/api/v1/forms/"+formID+"/entries", req, &result)
	return &result, err
}

// GetEntry возвращает заявку по публичному идентификатору.
func (c *Client) GetEntry(publicID string) (*EntryResponse, error) {
	var entry EntryResponse
	err := c.get("/api/v1/entries/"+publicID, &entry)
	return &entry, err
}

// SubmitStage отправляет очередной этап заявки.
func (c *Client) SubmitStage(publicID string, req SubmitStageRequest) (*SubmitResultResponse, error) {
	var result SubmitResultResponse
	err := c.post("/api/v1/entries/"+publicID+"/submit", req, &result)
	return &result, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if len(er.Error.FieldErrors) > 0 {
		// Стабильный порядок полей в сообщении
		keys := make([]string, 0, len(er.Error.FieldErrors))
		for k := range er.Error.FieldErrors {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("\n  field %s: %s", k, er.Error.FieldErrors[k]))
		}
		return fmt.Errorf("%s: %s%s", er.Error.Code, er.Error.Message, sb.String())
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
