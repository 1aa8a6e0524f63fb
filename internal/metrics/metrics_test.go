package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/invoice"
	"github.com/joseph-ayodele/invoice-extractor/internal/selector"
)

func TestObserveJob(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	num := "A1"
	m.ObserveJob(async.JobResult{
		Status:   constants.RunStatusOK,
		Duration: time.Second,
		Outcome: invoice.Outcome{
			Record:   invoice.Record{InvoiceNumber: &num},
			Selected: selector.SelectedText{Backend: constants.BackendOCR, Escalated: true},
		},
	})
	m.ObserveJob(async.JobResult{Status: constants.RunStatusTimeout, Err: errors.New("deadline")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("TIMEOUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backends.WithLabelValues("ocr")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.escalations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fields.WithLabelValues("invoice_number")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.fields.WithLabelValues("total_amount")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveJob(async.JobResult{Status: constants.RunStatusFailed, Err: errors.New("x")})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `invoicex_documents_total{status="FAILED"} 1`)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
