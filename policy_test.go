package ratelimits_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/ratelimits"
)

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  []ratelimits.Policy
	}{
		{"single", "100;w=60", []ratelimits.Policy{{Quota: 100, Window: time.Minute}}},
		{"list", "10, 100;w=60, 1000;w=3600", []ratelimits.Policy{
			{Quota: 10},
			{Quota: 100, Window: time.Minute},
			{Quota: 1000, Window: time.Hour},
		}},
		{"window spelled out", "50;window=1", []ratelimits.Policy{{Quota: 50, Window: time.Second}}},
		{"named", `"default";q=100;w=60`, []ratelimits.Policy{{Name: "default", Quota: 100, Window: time.Minute}}},
		{"token name with unit", `burst;q=1000;w=1;qu="content-bytes"`, []ratelimits.Policy{
			{Name: "burst", Quota: 1000, Window: time.Second, QuotaUnit: "content-bytes"},
		}},
		{"decimal truncates", "12.7;w=1.5", []ratelimits.Policy{{Quota: 12, Window: time.Second}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ratelimits.ParsePolicy(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParsePolicy_Errors(t *testing.T) {
	for _, value := range []string{
		"abc def",
		`"default";w=60`,
		"-1;w=60",
		"(1 2);w=60",
	} {
		t.Run(value, func(t *testing.T) {
			_, err := ratelimits.ParsePolicy(value)

			var target *ratelimits.MalformedIntegerError
			require.True(t, errors.As(err, &target), "got %v", err)
			assert.Equal(t, ratelimits.FieldPolicy, target.Field)
		})
	}

	_, err := ratelimits.ParsePolicy("100;w=-5")
	var target *ratelimits.MalformedIntegerError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, ratelimits.FieldWindow, target.Field)
}

func TestParsePolicy_ErrorCauses(t *testing.T) {
	cases := []struct {
		value string
		cause error
	}{
		{"(1 2);w=60", ratelimits.ErrInnerList},
		{`"default";w=60`, ratelimits.ErrNoQuota},
		{"?1;w=60", ratelimits.ErrNotCount},
		{`"default";q=?1`, ratelimits.ErrNotCount},
	}

	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			_, err := ratelimits.ParsePolicy(tc.value)
			assert.ErrorIs(t, err, tc.cause)
		})
	}

	_, err := ratelimits.ParsePolicy("abc def")
	var target *ratelimits.MalformedIntegerError
	require.True(t, errors.As(err, &target))
	assert.Error(t, target.Err, "parser error kept as the cause")
}
