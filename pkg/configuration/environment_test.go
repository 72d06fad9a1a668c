package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDatabaseOptions_ConnectionString(t *testing.T) {
	opts := DatabaseOptions{
		Name:     "workstream_test",
		Host:     "db.internal",
		Port:     "5433",
		User:     "svc",
		Password: "secret",
	}
	require.Equal(t,
		"host=db.internal port=5433 user=svc dbname=workstream_test password=secret sslmode=disable",
		opts.ConnectionString(),
	)
}

func TestWorkflowOptions_Validate(t *testing.T) {
	cases := []struct {
		window string
		ok     bool
	}{
		{DedupWindowCalendarDay, true},
		{DedupWindowNone, true},
		{"hourly", false},
		{"", false},
	}
	for _, tc := range cases {
		opts := WorkflowOptions{DedupWindow: tc.window}
		err := opts.Validate()
		if tc.ok {
			require.NoError(t, err, "window %q", tc.window)
		} else {
			require.Error(t, err, "window %q", tc.window)
		}
	}
}
