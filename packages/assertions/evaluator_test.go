package assertions

import (
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/smokespec/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createResponse(statusCode int, headers map[string]string) *http.Response {
	if headers == nil {
		headers = make(map[string]string)
	}
	return &http.Response{
		StatusCode: statusCode,
		Headers:    headers,
		Duration:   100 * time.Millisecond,
	}
}

func TestEvaluator_Status(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
		passed   bool
		message  string
	}{
		{name: "get ok", actual: 200, expected: 200, passed: true},
		{name: "created", actual: 201, expected: 201, passed: true},
		{name: "no content", actual: 204, expected: 204, passed: true},
		{name: "not found", actual: 404, expected: 200, passed: false, message: "expected status 200, got 404"},
		{name: "delete returned ok", actual: 200, expected: 204, passed: false, message: "expected status 204, got 200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewEvaluator(createResponse(tt.actual, nil)).Status(tt.expected)
			assert.Equal(t, tt.passed, result.Passed)
			assert.Equal(t, tt.expected, result.Expected)
			assert.Equal(t, tt.actual, result.Actual)
			assert.Equal(t, tt.message, result.Message)
			assert.Equal(t, "status", result.Subject)
		})
	}
}

func TestEvaluator_HeaderExists(t *testing.T) {
	t.Run("present with different case", func(t *testing.T) {
		resp := createResponse(201, map[string]string{"Location": "/api/1"})
		result := NewEvaluator(resp).HeaderExists("location")
		assert.True(t, result.Passed)
		assert.Equal(t, "/api/1", result.Actual)
	})

	t.Run("present but empty", func(t *testing.T) {
		resp := createResponse(201, map[string]string{"Location": ""})
		result := NewEvaluator(resp).HeaderExists("location")
		assert.True(t, result.Passed)
	})

	t.Run("absent", func(t *testing.T) {
		result := NewEvaluator(createResponse(201, nil)).HeaderExists("location")
		assert.False(t, result.Passed)
		assert.Equal(t, "absent", result.Actual)
		assert.Contains(t, result.Message, `"location"`)
	})
}

func TestCheck_StatusAndHeader(t *testing.T) {
	exp := Expectation{Status: 201, RequireHeader: "location"}

	t.Run("both hold", func(t *testing.T) {
		results, err := Check(createResponse(201, map[string]string{"Location": "/x"}), exp)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("missing header fails even with matching status", func(t *testing.T) {
		_, err := Check(createResponse(201, nil), exp)
		require.Error(t, err)

		var failure *Failure
		require.True(t, errors.As(err, &failure))
		failed := failure.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, "header location", failed[0].Subject)
	})

	t.Run("both fail", func(t *testing.T) {
		_, err := Check(createResponse(500, nil), exp)
		require.Error(t, err)
		assert.Equal(t, `expected status 201, got 500; expected header "location" to be present`, err.Error())
	})
}

func TestCheck_StatusOnly(t *testing.T) {
	results, err := Check(createResponse(200, nil), Expectation{Status: 200})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestCheck_SameResponseSameOutcome(t *testing.T) {
	resp := createResponse(404, nil)
	exp := Expectation{Status: 200}

	_, first := Check(resp, exp)
	_, second := Check(resp, exp)
	assert.Equal(t, first.Error(), second.Error())
}

func TestOperator_String(t *testing.T) {
	assert.Equal(t, "==", OpEquals.String())
	assert.Equal(t, "exists", OpExists.String())
	assert.Equal(t, "unknown", Operator(99).String())
}
