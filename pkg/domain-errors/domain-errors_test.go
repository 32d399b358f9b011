package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the error primitives every handler maps to an envelope.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestMessageFallsBackToCode() {
	s.Equal("Artist not found", New(CodeNotFound, "Artist not found").Error())
	s.Equal("forbidden", (&Error{Code: CodeForbidden}).Error())
}

func (s *DomainErrorsSuite) TestCodeMatching() {
	missingArtist := New(CodeNotFound, "Artist not found: [7]")
	missingTrack := New(CodeNotFound, "Track not found: [99]")

	s.True(errors.Is(missingArtist, missingTrack), "errors with the same code match")
	s.False(errors.Is(missingArtist, New(CodeForbidden, "")))
	s.False(errors.Is(missingArtist, errors.New("Artist not found: [7]")))

	chained := fmt.Errorf("add tracks: %w", missingTrack)
	s.True(errors.Is(chained, &Error{Code: CodeNotFound}))
}

func (s *DomainErrorsSuite) TestWrap() {
	cases := []struct {
		name     string
		inner    error
		fallback Code
		want     Code
	}{
		{"keeps the inner domain code", New(CodeForbidden, "You don't have permission to modify this playlist"), CodeInternal, CodeForbidden},
		{"applies the fallback to plain errors", errors.New("connection reset"), CodeInternal, CodeInternal},
		{"applies the fallback to wrapped plain errors", fmt.Errorf("scan: %w", errors.New("eof")), CodeValidation, CodeValidation},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			err := Wrap(tc.inner, tc.fallback, "update playlist")

			var de *Error
			s.Require().True(errors.As(err, &de))
			s.Equal(tc.want, de.Code)
			s.Equal("update playlist", de.Message)
			s.ErrorIs(err, tc.inner)
		})
	}
}

func (s *DomainErrorsSuite) TestHasCode() {
	wrapped := Wrap(New(CodeNotFound, "Album not found"), CodeInternal, "load album")

	s.True(HasCode(wrapped, CodeNotFound))
	s.False(HasCode(wrapped, CodeInternal))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.False(HasCode(nil, CodeNotFound))
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeForbidden, CodeOf(Wrap(New(CodeForbidden, "Only the owner can delete this playlist"), CodeInternal, "delete")))
	s.Equal(CodeInternal, CodeOf(errors.New("boom")))
	s.Equal(CodeInternal, CodeOf(nil))

	following := New(CodeAlreadyExists, "Already following this user")
	s.Equal(CodeAlreadyExists, CodeOf(following))
	s.False(HasCode(following, CodeConflict))
}
