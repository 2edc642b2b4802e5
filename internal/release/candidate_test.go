package release

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/stagehand/cli/internal/errors"
)

func TestParseTag_ValidTags(t *testing.T) {
	tests := []struct {
		name        string
		tag         string
		project     string
		wantVersion string
		wantRC      string
	}{
		{"simple", "pyiceberg-0.8.0rc2", "pyiceberg", "0.8.0", "2"},
		{"first candidate", "pyiceberg-1.0.0rc1", "pyiceberg", "1.0.0", "1"},
		{"multi digit parts", "pyiceberg-10.20.30rc15", "pyiceberg", "10.20.30", "15"},
		{"leading zeros echoed unchanged", "pyiceberg-0.8.02rc03", "pyiceberg", "0.8.02", "03"},
		{"project name containing rc", "orchestra-2.1.0rc4", "orchestra", "2.1.0", "4"},
		{"project name with hyphen", "my-lib-0.1.0rc1", "my-lib", "0.1.0", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseTag(tt.tag, tt.project)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, c.Version.String())
			assert.Equal(t, tt.wantRC, c.RC)
		})
	}
}

func TestParseTag_ParseFailures(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		project string
	}{
		{"no rc marker", "pyiceberg-0.8.0", "pyiceberg"},
		{"empty version part", "pyiceberg-rc2", "pyiceberg"},
		{"empty rc part", "pyiceberg-0.8.0rc", "pyiceberg"},
		{"wrong prefix", "iceberg-0.8.0rc2", "pyiceberg"},
		{"no prefix at all", "0.8.0rc2", "pyiceberg"},
		{"empty tag", "", "pyiceberg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTag(tt.tag, tt.project)
			require.Error(t, err)
			assert.True(t, errors.Is(err, serrors.ErrParse), "expected a parse error, got: %v", err)
		})
	}
}

func TestParseTag_ShapeFailures(t *testing.T) {
	// The tag splits cleanly but a part has the wrong shape. This is a
	// validation failure, not a parse failure.
	tests := []struct {
		name string
		tag  string
	}{
		{"two-part version", "pyiceberg-0.8rc1"},
		{"four-part version", "pyiceberg-0.8.0.1rc1"},
		{"non-numeric version segment", "pyiceberg-0.8.xrc1"},
		{"non-numeric rc", "pyiceberg-0.8.0rcfinal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTag(tt.tag, "pyiceberg")
			require.Error(t, err)
			assert.True(t, errors.Is(err, serrors.ErrValidation), "expected a validation error, got: %v", err)
		})
	}
}

func TestParseTag_SplitsOnFirstMarker(t *testing.T) {
	// The split happens on the first rc occurrence, so a second marker ends
	// up inside the rc part and fails the digits check. Guards the split
	// point if the tag grammar is ever loosened.
	_, err := ParseTag("pyiceberg-0.8.0rc2rc3", "pyiceberg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrValidation))

	var detail *serrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "2rc3", detail.Context["Value"])
}

func TestParseTag_ErrorNamesOffendingTag(t *testing.T) {
	_, err := ParseTag("pyiceberg-broken", "pyiceberg")
	require.Error(t, err)

	var detail *serrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "pyiceberg-broken", detail.Context["Tag"])
}

func TestNewCandidate_EchoesInputsUnchanged(t *testing.T) {
	tests := []struct {
		version string
		rc      string
	}{
		{"0.8.0", "2"},
		{"1.0.0", "1"},
		{"10.20.30", "100"},
		{"0.8.02", "03"},
	}

	for _, tt := range tests {
		t.Run(tt.version+"rc"+tt.rc, func(t *testing.T) {
			c, err := NewCandidate(tt.version, tt.rc)
			require.NoError(t, err)
			assert.Equal(t, tt.version, c.Version.String())
			assert.Equal(t, tt.rc, c.RC)
		})
	}
}

func TestNewCandidate_InvalidVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"two parts", "1.0"},
		{"four parts", "1.0.0.0"},
		{"non-numeric segment", "1.0.x"},
		{"empty segment", "1..0"},
		{"empty", ""},
		{"prerelease suffix", "1.0.0rc1"},
		{"v prefix", "v1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCandidate(tt.version, "1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, serrors.ErrValidation))
		})
	}
}

func TestNewCandidate_InvalidRC(t *testing.T) {
	tests := []struct {
		name string
		rc   string
	}{
		{"word", "two"},
		{"empty", ""},
		{"negative", "-1"},
		{"trailing letter", "2b"},
		{"whitespace", " 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCandidate("1.0.0", tt.rc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, serrors.ErrValidation))
		})
	}
}

func TestCandidate_Qualified(t *testing.T) {
	c, err := NewCandidate("0.8.0", "2")
	require.NoError(t, err)

	assert.Equal(t, "0.8.0rc2", c.Qualified())
}

func TestCandidate_Tag(t *testing.T) {
	c, err := NewCandidate("0.8.0", "2")
	require.NoError(t, err)

	assert.Equal(t, "pyiceberg-0.8.0rc2", c.Tag("pyiceberg"))
}

func TestCandidate_TagRoundTrip(t *testing.T) {
	c, err := NewCandidate("1.4.2", "7")
	require.NoError(t, err)

	back, err := ParseTag(c.Tag("pyiceberg"), "pyiceberg")
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestCandidate_Compare(t *testing.T) {
	older, err := NewCandidate("0.8.0", "2")
	require.NoError(t, err)
	newer, err := NewCandidate("0.8.0", "10")
	require.NoError(t, err)
	next, err := NewCandidate("0.9.0", "1")
	require.NoError(t, err)

	assert.Negative(t, older.Compare(newer), "rc ordering is numeric, not lexical")
	assert.Positive(t, newer.Compare(older))
	assert.Negative(t, newer.Compare(next))
	assert.Zero(t, older.Compare(older))
}

func TestCandidate_RCNumber(t *testing.T) {
	c, err := NewCandidate("0.8.0", "03")
	require.NoError(t, err)

	assert.Equal(t, uint64(3), c.RCNumber())
	assert.Equal(t, "03", c.RC, "the echoed string keeps its leading zero")
}
