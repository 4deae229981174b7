package auth

// Service gates the Telegram front end behind an allowlist of user IDs.
// An empty allowlist leaves the bot open, which is the demo default.
type Service struct {
	allowed map[int64]bool
}

func New(allowedUsers []int64) *Service {
	s := &Service{allowed: make(map[int64]bool, len(allowedUsers))}
	for _, id := range allowedUsers {
		s.allowed[id] = true
	}
	return s
}

func (s *Service) IsAllowed(userID int64) bool {
	if len(s.allowed) == 0 {
		return true
	}
	return s.allowed[userID]
}
