package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the hosted complaint service.
const DefaultBaseURL = "https://fast-api-bot-samriddha-biswas-projects.vercel.app"

var ErrNotFound = errors.New("complaint not found")

// Submission carries a completed draft. Field names follow the chat side;
// the client maps them to the wire names.
type Submission struct {
	Name    string
	Phone   string
	Email   string
	Details string
}

// Receipt is the service's answer to a successful create.
type Receipt struct {
	ID string `json:"id"`
}

// Complaint is a stored complaint as returned by the service.
type Complaint struct {
	ComplaintID      string `json:"complaint_id,omitempty"`
	ObjectID         string `json:"_id,omitempty"`
	Name             string `json:"name,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	Email            string `json:"email,omitempty"`
	ComplaintDetails string `json:"complaint_details,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// UnmarshalJSON reads every field as text. The service returns ids and
// phone numbers as JSON numbers on some records.
func (c *Complaint) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}
	*c = Complaint{
		ComplaintID:      text(fields["complaint_id"]),
		ObjectID:         text(fields["_id"]),
		Name:             text(fields["name"]),
		PhoneNumber:      text(fields["phone_number"]),
		Email:            text(fields["email"]),
		ComplaintDetails: text(fields["complaint_details"]),
		CreatedAt:        text(fields["created_at"]),
	}
	return nil
}

// decodeFields keeps numbers as json.Number so large ids are not turned
// into floats.
func decodeFields(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// ID returns complaint_id, falling back to _id.
func (c Complaint) ID() string {
	if c.ComplaintID != "" {
		return c.ComplaintID
	}
	return c.ObjectID
}

// Service creates and looks up complaints.
type Service interface {
	Create(ctx context.Context, s Submission) (*Receipt, error)
	Fetch(ctx context.Context, id string) (*Complaint, error)
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

var _ Service = &Client{}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type createRequest struct {
	Name             string `json:"name"`
	PhoneNumber      string `json:"phone_number"`
	Email            string `json:"email"`
	ComplaintDetails string `json:"complaint_details"`
}

func (c *Client) Create(ctx context.Context, s Submission) (*Receipt, error) {
	payload, err := json.Marshal(createRequest{
		Name:             s.Name,
		PhoneNumber:      s.Phone,
		Email:            s.Email,
		ComplaintDetails: s.Details,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/complaints", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("API error: status %d, body: %s", status, snippet(body))
	}

	fields, err := decodeFields(body)
	if err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	for _, key := range []string{"complaint_id", "id"} {
		if id := text(fields[key]); id != "" {
			return &Receipt{ID: id}, nil
		}
	}
	return nil, errors.New("API error: response carried no complaint id")
}

func (c *Client) Fetch(ctx context.Context, id string) (*Complaint, error) {
	endpoint := c.BaseURL + "/api/complaints/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("complaint %s: %w", id, ErrNotFound)
	case status != http.StatusOK:
		return nil, fmt.Errorf("error retrieving complaint: status %d", status)
	}

	var complaint Complaint
	if err := json.Unmarshal(body, &complaint); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &complaint, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
