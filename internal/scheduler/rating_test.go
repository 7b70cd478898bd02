package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseRating(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Rating
		wantErr bool
	}{
		{name: "name", input: "Good", want: Good},
		{name: "lower case name", input: "again", want: Again},
		{name: "padded name", input: " Easy ", want: Easy},
		{name: "ordinal", input: "2", want: Hard},
		{name: "ordinal out of range", input: "5", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "unknown name", input: "Perfect", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRating(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRating)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRatingFromInt(t *testing.T) {
	for i, want := range Ratings {
		got, err := RatingFromInt(i + 1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := RatingFromInt(-1)
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestRating_String(t *testing.T) {
	assert.Equal(t, "Again", Again.String())
	assert.Equal(t, "Easy", Easy.String())
	assert.Equal(t, "Rating(9)", Rating(9).String())
}

func TestRating_Ordering(t *testing.T) {
	assert.Less(t, Again, Hard)
	assert.Less(t, Hard, Good)
	assert.Less(t, Good, Easy)
	assert.Equal(t, 3, int(Good))
}

func TestRating_YAML(t *testing.T) {
	type record struct {
		Rating Rating `yaml:"rating"`
	}

	out, err := yaml.Marshal(record{Rating: Hard})
	require.NoError(t, err)
	assert.Equal(t, "rating: Hard\n", string(out))

	var got record
	require.NoError(t, yaml.Unmarshal([]byte("rating: easy\n"), &got))
	assert.Equal(t, Easy, got.Rating)

	assert.Error(t, yaml.Unmarshal([]byte("rating: never\n"), &got))

	_, err = Rating(0).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidRating)
}
