package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgricker/verdict/internal/report"
	"github.com/bgricker/verdict/internal/status"
)

func TestJSONRendererVerdictReport(t *testing.T) {
	features := sampleFeatures(t)
	policy := status.Policy{PendingFailsBuild: true}
	summary := report.Summarize(features, policy)

	buf := &bytes.Buffer{}
	require.NoError(t, NewJSON(buf).Render(VerdictReport(features, summary, policy, []string{"login.json:Login: note"})))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	require.NotNil(t, decoded.Verdict)
	assert.Equal(t, status.Failed, *decoded.Verdict)
	require.NotNil(t, decoded.Policy)
	assert.Equal(t, policy, *decoded.Policy)
	assert.Equal(t, []string{"login.json:Login: note"}, decoded.Warnings)

	require.Len(t, decoded.Features, 1)
	feature := decoded.Features[0]
	assert.Equal(t, []Tag{{Name: "@auth", Link: "auth.html"}}, feature.Tags)
	require.Len(t, feature.Elements, 3)

	background := feature.Elements[0]
	assert.True(t, background.Background)
	assert.Equal(t, status.Passed, *background.Status)

	wrong := feature.Elements[1]
	assert.Equal(t, status.Failed, *wrong.Status)
	assert.Equal(t, "shots/login-wrong-password.png", wrong.Image)
	assert.Equal(t, []Tag{{Name: "@Negative", Link: "negative.html"}}, wrong.Tags)
	require.Len(t, wrong.Steps, 3)
	assert.Equal(t, "Then", wrong.Steps[1].Keyword)
	assert.Equal(t, "expected error banner", wrong.Steps[1].ErrorMessage)
	assert.EqualValues(t, 2, wrong.Steps[1].DurationMS)

	reset := feature.Elements[2]
	assert.Equal(t, status.Failed, *reset.Status)
	assert.Equal(t, status.Pending, *reset.Worst)

	require.NotNil(t, decoded.Summary)
	assert.Equal(t, 2, decoded.Summary.FailedScenarios)
	assert.Equal(t, 1, decoded.Summary.ExitCode)
}

func TestJSONRendererListReport(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewJSON(buf).Render(ListReport(sampleFeatures(t), nil)))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.NotContains(t, raw, "verdict")
	assert.NotContains(t, raw, "summary")
	assert.NotContains(t, raw, "warnings")

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Features, 1)
	assert.Nil(t, decoded.Features[0].Status)
	assert.Nil(t, decoded.Features[0].Elements[1].Status)
}

func TestTagLink(t *testing.T) {
	cases := map[string]string{
		"@Smoke":      "smoke.html",
		"@wip":        "wip.html",
		" @Slow-Test": "slow-test.html",
		"@ÜBER":       "über.html",
	}
	for in, want := range cases {
		assert.Equal(t, want, TagLink(in), in)
	}
}
