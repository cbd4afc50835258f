// internal/domain/models/refs.go
package models

import (
	"bytes"
	"encoding/json"
)

// The backend returns reference fields either as a bare id string or as a
// populated document. The Ref types below accept both shapes and always
// expose the id.

// UserRef references a user.
type UserRef struct {
	ID    string
	Name  string
	Email string
}

type userDoc struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *UserRef) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		u.Name, u.Email = "", ""
		return json.Unmarshal(b, &u.ID)
	}
	if isJSONNull(b) {
		*u = UserRef{}
		return nil
	}
	var d userDoc
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*u = UserRef(d)
	return nil
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	if u.Name == "" && u.Email == "" {
		return json.Marshal(u.ID)
	}
	return json.Marshal(userDoc(u))
}

// DisplayName returns the populated name, falling back to the email, then the id.
func (u UserRef) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	}
	return u.ID
}

// GroupRef references a Group.
type GroupRef struct {
	ID    string
	Group *Group
}

func (g *GroupRef) UnmarshalJSON(b []byte) error {
	g.Group = nil
	if isJSONString(b) {
		return json.Unmarshal(b, &g.ID)
	}
	if isJSONNull(b) {
		g.ID = ""
		return nil
	}
	var grp Group
	if err := json.Unmarshal(b, &grp); err != nil {
		return err
	}
	g.ID = grp.ID
	g.Group = &grp
	return nil
}

func (g GroupRef) MarshalJSON() ([]byte, error) {
	if g.Group == nil {
		return json.Marshal(g.ID)
	}
	return json.Marshal(g.Group)
}

// ChapterGroupRef references a ChapterGroup.
type ChapterGroupRef struct {
	ID           string
	ChapterGroup *ChapterGroup
}

func (c *ChapterGroupRef) UnmarshalJSON(b []byte) error {
	c.ChapterGroup = nil
	if isJSONString(b) {
		return json.Unmarshal(b, &c.ID)
	}
	if isJSONNull(b) {
		c.ID = ""
		return nil
	}
	var cg ChapterGroup
	if err := json.Unmarshal(b, &cg); err != nil {
		return err
	}
	c.ID = cg.ID
	c.ChapterGroup = &cg
	return nil
}

func (c ChapterGroupRef) MarshalJSON() ([]byte, error) {
	if c.ChapterGroup == nil {
		return json.Marshal(c.ID)
	}
	return json.Marshal(c.ChapterGroup)
}

func isJSONString(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '"'
}

func isJSONNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
