package jobsapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
)

type rpcServer struct {
	t        *testing.T
	lastPath string
	lastBody map[string]any
	lastKey  string
	status   int
	response string
}

func (s *rpcServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.lastPath = r.URL.Path
	s.lastKey = r.Header.Get("apikey")
	s.lastBody = nil
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&s.lastBody))

	if s.status != 0 {
		w.WriteHeader(s.status)
	}
	_, _ = w.Write([]byte(s.response))
}

func newTestClient(t *testing.T, s *rpcServer) *Client {
	t.Helper()
	s.t = t
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", "anon", "org-key", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresURLAndKey(t *testing.T) {
	_, err := New("", "anon", "key")
	assert.Error(t, err)
	_, err = New("https://example.com", "anon", "")
	assert.Error(t, err)
}

func TestJobLogs(t *testing.T) {
	s := &rpcServer{response: `[
		{"id":"b1c0","worker_id":"w1","worker_first_name":"Ola","worker_last_name":"Nordmann",
		 "work_type":"glenne_vedpakking","date_completed":"2025-03-14","hours_worked":2.5,
		 "units_completed":12,"hourly_rate":null,"comments":"","rating":5,"reviewed":"approved"},
		{"id":"b1c1","worker_id":"w2","worker_first_name":"Kari","worker_last_name":"","work_type":"snow_removal",
		 "date_completed":"2025-03-15","hours_worked":"1,5"}
	]`}
	c := newTestClient(t, s)

	r, err := period.ParseDateRange("2025-03-01", "2025-03-31")
	require.NoError(t, err)
	rs, err := c.JobLogs(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/rpc/get_job_logs_with_api_key", s.lastPath)
	assert.Equal(t, "anon", s.lastKey)
	assert.Equal(t, map[string]any{"p_api_key": "org-key", "p_from_date": "2025-03-01", "p_to_date": "2025-03-31"}, s.lastBody)

	require.Equal(t, 2, rs.Len())
	ola := rs.Rows[0]
	assert.Equal(t, "Ola Nordmann", ola.WorkerName)
	assert.Equal(t, "w1", ola.WorkerID)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), ola.DateCompleted)
	assert.Equal(t, 2.5, ola.HoursWorked)
	require.NotNil(t, ola.UnitsCompleted)
	assert.Equal(t, 12.0, *ola.UnitsCompleted)
	assert.Nil(t, ola.HourlyRate)
	assert.Equal(t, "approved", ola.Reviewed)

	assert.Equal(t, "Kari", rs.Rows[1].WorkerName)
	assert.Equal(t, 1.5, rs.Rows[1].HoursWorked)
	assert.True(t, rs.Columns.Has(model.ColWorkerName))
	assert.True(t, rs.Columns.Has(model.ColUnitsCompleted))
	assert.False(t, rs.Columns.Has(model.ColRole))
}

func TestJobLogs_KeepsFeedSeason(t *testing.T) {
	s := &rpcServer{response: `[
		{"id":"b1c0","worker_id":"w1","worker_first_name":"Ola","worker_last_name":"Nordmann",
		 "work_type":"glenne_vedpakking","date_completed":"2025-07-30","hours_worked":2,"season":"25/26"},
		{"id":"b1c1","worker_id":"w1","worker_first_name":"Ola","worker_last_name":"Nordmann",
		 "work_type":"glenne_vedpakking","date_completed":"2025-07-31","hours_worked":1,"season":null}
	]`}
	c := newTestClient(t, s)

	rs, err := c.JobLogs(context.Background(), period.DateRange{})
	require.NoError(t, err)

	require.Equal(t, 2, rs.Len())
	assert.True(t, rs.Columns.Has(model.ColSeason))
	assert.Equal(t, "25/26", rs.Rows[0].Season)
	assert.Empty(t, rs.Rows[1].Season)
}

func TestJobLogs_EmptyKeepsColumns(t *testing.T) {
	s := &rpcServer{response: `[]`}
	c := newTestClient(t, s)

	rs, err := c.JobLogs(context.Background(), period.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, 0, rs.Len())
	assert.True(t, rs.Columns.Has(model.ColDateCompleted))
	assert.Nil(t, s.lastBody["p_from_date"])
}

func TestJobLogs_HTTPError(t *testing.T) {
	s := &rpcServer{status: http.StatusUnauthorized, response: `{"message":"invalid api key"}`}
	c := newTestClient(t, s)

	_, err := c.JobLogs(context.Background(), period.DateRange{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "invalid api key")
}

func TestProfiles(t *testing.T) {
	s := &rpcServer{response: `[
		{"id":"w1","first_name":" Ola ","last_name":"Nordmann","role":"member","date_of_birth":"2009-05-01",
		 "bank_account_number":"1234.56.78903","custom_id":42,"email":"ola@example.com"},
		{"id":"p1","first_name":"Per","last_name":"Foreldre","role":"parent","date_of_birth":null,
		 "bank_account_number":null,"custom_id":null,"email":"per@example.com"},
		{"id":"w3","first_name":"Lise","last_name":"","role":"member","date_of_birth":"soon",
		 "bank_account_number":12345678903,"email":""}
	]`}
	c := newTestClient(t, s)

	members, err := c.Profiles(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/rpc/get_profiles_with_api_key", s.lastPath)
	assert.Equal(t, map[string]any{"p_api_key": "org-key"}, s.lastBody)

	require.Len(t, members, 3)
	ola := members[0]
	assert.Equal(t, "Ola Nordmann", ola.FullName())
	assert.Equal(t, "12345678903", ola.BankAccountNumber)
	require.NotNil(t, ola.DateOfBirth)
	assert.Equal(t, 2009, ola.DateOfBirth.Year())
	require.NotNil(t, ola.CustomID)
	assert.Equal(t, 42, *ola.CustomID)

	assert.Equal(t, model.OrgRoleParent, members[1].Role)
	assert.Nil(t, members[1].DateOfBirth)
	assert.Empty(t, members[1].BankAccountNumber)

	assert.Nil(t, members[2].DateOfBirth, "unreadable birth date is dropped")
	assert.Equal(t, "12345678903", members[2].BankAccountNumber)
}
