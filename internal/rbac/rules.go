package rbac

const (
	RoleLearner = "learner"
	RoleAuthor  = "author"
	RoleAdmin   = "admin"
)

const (
	PermSetView          = "set:view"
	PermSetCreate        = "set:create"
	PermSessionCreate    = "session:create"
	PermSessionAnswer    = "session:answer"
	PermSessionSubmit    = "session:submit"
	PermSessionView      = "session:view"
	PermSpeechSynthesize = "speech:synthesize"
)

// Default policy. Learners are anonymous; authors and admins log in.
var RolePermissions = map[string][]string{
	RoleLearner: {
		PermSetView,
		"session:*",
		PermSpeechSynthesize,
	},
	RoleAuthor: {
		PermSetView,
		PermSetCreate,
		"session:*",
		PermSpeechSynthesize,
	},
	RoleAdmin: {
		"*", // everything
	},
}
