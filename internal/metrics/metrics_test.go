package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAuth(t *testing.T) {
	before := testutil.ToFloat64(AuthOperationsTotal.WithLabelValues("logout", "failure"))
	RecordAuth("logout", errors.New("boom"))
	after := testutil.ToFloat64(AuthOperationsTotal.WithLabelValues("logout", "failure"))
	assert.Equal(t, before+1, after)
}

func TestRecordDataAPI(t *testing.T) {
	before := testutil.ToFloat64(DataAPIRequestsTotal.WithLabelValues("monuments", "success"))
	RecordDataAPI("monuments", nil)
	after := testutil.ToFloat64(DataAPIRequestsTotal.WithLabelValues("monuments", "success"))
	assert.Equal(t, before+1, after)
}
