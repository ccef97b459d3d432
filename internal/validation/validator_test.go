package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/model"
)

func TestStructAcceptsValidFilm(t *testing.T) {
	f := model.Film{Title: "Alien", Description: "in space", Duration: 117}
	assert.NoError(t, Struct(&f))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	f := model.Film{Description: strings.Repeat("я", 201)}
	err := Struct(&f)
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	fields := map[string]string{}
	for _, fe := range verr.Fields {
		fields[fe.Field] = fe.Tag
	}
	assert.Equal(t, map[string]string{"name": "required", "description": "max", "duration": "gt"}, fields)
	assert.Contains(t, err.Error(), "description failed max=200")
}

func TestStructCountsRunesNotBytes(t *testing.T) {
	f := model.Film{Title: "x", Description: strings.Repeat("я", 200), Duration: 1}
	assert.NoError(t, Struct(&f))
}

func TestStructRejectsLoginWithSpaces(t *testing.T) {
	u := model.User{Email: "a@b.c", Login: "two words"}
	err := Struct(&u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed excludesall")
}

func TestEchoValidatorReviewRequiresPolarity(t *testing.T) {
	rv := model.Review{Content: "fine", UserID: 1, FilmID: 1}
	err := EchoValidator{}.Validate(&rv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "isPositive failed required")
}
