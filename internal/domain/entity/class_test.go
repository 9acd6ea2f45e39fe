package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClass_Review(t *testing.T) {
	tests := []struct {
		name    string
		from    ClassStatus
		to      ClassStatus
		wantErr error
		want    ClassStatus
	}{
		{name: "pending to approved", from: ClassPending, to: ClassApproved, want: ClassApproved},
		{name: "pending to denied", from: ClassPending, to: ClassDenied, want: ClassDenied},
		{name: "pending to pending", from: ClassPending, to: ClassPending, wantErr: ErrInvalidTransition, want: ClassPending},
		{name: "approved to denied", from: ClassApproved, to: ClassDenied, wantErr: ErrInvalidTransition, want: ClassApproved},
		{name: "denied to approved", from: ClassDenied, to: ClassApproved, wantErr: ErrInvalidTransition, want: ClassDenied},
		{name: "unknown target", from: ClassPending, to: "archived", wantErr: ErrInvalidTransition, want: ClassPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Class{Status: tt.from}
			err := c.Review(tt.to, "reason")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, c.Status)
		})
	}
}

func TestClassPatch_ApplyResubmits(t *testing.T) {
	c := &Class{Name: "Hatha", Price: 20, Status: ClassApproved, Reason: "ok"}
	name := "Hatha Flow"
	ClassPatch{Name: &name}.Apply(c)

	assert.Equal(t, "Hatha Flow", c.Name)
	assert.Equal(t, 20.0, c.Price)
	assert.Equal(t, ClassPending, c.Status)
	assert.Empty(t, c.Reason)
}

func TestClass_CanView(t *testing.T) {
	c := &Class{
		InstructorEmail: "guru@x.com",
		Chapters: []Chapter{
			{Title: "intro", Video: "v0", IsFree: true},
			{Title: "deep", Video: "v1"},
		},
	}
	anon := Viewer{}
	student := Viewer{Email: "a@x.com", Role: RoleUser}
	owner := Viewer{Email: "guru@x.com", Role: RoleInstructor}
	admin := Viewer{Email: "root@x.com", Role: RoleAdmin}

	tests := []struct {
		name     string
		viewer   Viewer
		enrolled bool
		idx      int
		want     bool
	}{
		{name: "free chapter anonymous", viewer: anon, idx: 0, want: true},
		{name: "locked chapter anonymous", viewer: anon, idx: 1, want: false},
		{name: "locked chapter not enrolled", viewer: student, idx: 1, want: false},
		{name: "locked chapter enrolled", viewer: student, enrolled: true, idx: 1, want: true},
		{name: "owner sees all", viewer: owner, idx: 1, want: true},
		{name: "admin sees all", viewer: admin, idx: 1, want: true},
		{name: "out of range", viewer: admin, idx: 2, want: false},
		{name: "negative index", viewer: admin, idx: -1, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.CanView(tt.viewer, tt.enrolled, tt.idx))
		})
	}
}

func TestClass_RedactFor(t *testing.T) {
	c := Class{Chapters: []Chapter{
		{Title: "intro", Video: "v0", IsFree: true},
		{Title: "deep", Video: "v1"},
	}}

	out := c.RedactFor(Viewer{}, false)
	require.Len(t, out.Chapters, 2)
	assert.Equal(t, "v0", out.Chapters[0].Video)
	assert.False(t, out.Chapters[0].Locked)
	assert.Empty(t, out.Chapters[1].Video)
	assert.True(t, out.Chapters[1].Locked)

	// the original is untouched
	assert.Equal(t, "v1", c.Chapters[1].Video)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2000), MinorUnits(20))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(3500), MinorUnits(20)+MinorUnits(15))
	assert.Equal(t, int64(30), MinorUnits(0.1+0.2))
}

func TestViewer_Owns(t *testing.T) {
	assert.True(t, Viewer{Email: "a@x.com", Role: RoleUser}.Owns("a@x.com"))
	assert.False(t, Viewer{Email: "a@x.com", Role: RoleUser}.Owns("b@x.com"))
	assert.True(t, Viewer{Email: "root@x.com", Role: RoleAdmin}.Owns("b@x.com"))
	assert.False(t, Viewer{}.Owns(""))
}
