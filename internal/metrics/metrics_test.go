package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	m := &dto.Metric{}
	if err := cv.WithLabelValues(labels...).Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestRecordLogin(t *testing.T) {
	before := getCounterVecValue(LoginAttemptsTotal, "success")
	RecordLogin("success")
	RecordLogin("success")
	if got := getCounterVecValue(LoginAttemptsTotal, "success") - before; got != 2 {
		t.Fatalf("expected 2 successful logins recorded, got %v", got)
	}
}

func TestRecordSessionDecode(t *testing.T) {
	before := getCounterVecValue(SessionDecodesTotal, "expired")
	RecordSessionDecode("expired")
	if got := getCounterVecValue(SessionDecodesTotal, "expired") - before; got != 1 {
		t.Fatalf("expected 1 expired decode, got %v", got)
	}
}

func TestRecordRefreshAndLogout(t *testing.T) {
	refreshes := getCounterValue(SessionRefreshesTotal)
	logouts := getCounterValue(LogoutsTotal)
	RecordRefresh()
	RecordLogout()
	if got := getCounterValue(SessionRefreshesTotal) - refreshes; got != 1 {
		t.Fatalf("refreshes delta = %v", got)
	}
	if got := getCounterValue(LogoutsTotal) - logouts; got != 1 {
		t.Fatalf("logouts delta = %v", got)
	}
}

func TestRecordRouteDecision(t *testing.T) {
	before := getCounterVecValue(RouteDecisionsTotal, "redirect")
	RecordRouteDecision("redirect")
	if got := getCounterVecValue(RouteDecisionsTotal, "redirect") - before; got != 1 {
		t.Fatalf("expected 1 redirect, got %v", got)
	}
}
