package domain

import (
	"strconv"
	"strings"
)

// PlayerKey derives the identity key joining live events to stored stats:
// the persistent auth id when present, else the connection id, else the
// transient session id.
func PlayerKey(p Player) string {
	if strings.TrimSpace(p.Auth) != "" {
		return "auth:" + p.Auth
	}
	if strings.TrimSpace(p.Conn) != "" {
		return "conn:" + p.Conn
	}
	return "id:" + strconv.Itoa(p.ID)
}

func (p Player) Info() PlayerInfo {
	return PlayerInfo{Name: p.Name, Auth: p.Auth, Conn: p.Conn}
}
