package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  string
		expectErr error
	}{
		{name: "Trim and upper-case", raw: " ab-12_X ", expected: "AB-12_X"},
		{name: "Already canonical", raw: "0017", expected: "0017"},
		{name: "Inner space", raw: "AB 12", expectErr: ErrInvalid},
		{name: "At sign", raw: "AB@12", expectErr: ErrInvalid},
		{name: "Cyrillic letters", raw: "АБ12", expectErr: ErrInvalid},
		{name: "Empty", raw: "   ", expectErr: ErrEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestNormalize_LengthLimit(t *testing.T) {
	long := make([]byte, MaxLength+1)
	for i := range long {
		long[i] = 'A'
	}
	_, err := Normalize(string(long))
	assert.ErrorIs(t, err, ErrTooLong)

	ok, err := Normalize(string(long[:MaxLength]))
	assert.NoError(t, err)
	assert.Len(t, ok, MaxLength)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%AB\_1%`, LikePattern(" ab_1 "))
	assert.Equal(t, `%\%\\%`, LikePattern(`%\`))
}
