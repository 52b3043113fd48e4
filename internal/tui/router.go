package tui

import "github.com/bloghub/bloghub/internal/route"

// newScreen builds the screen for a resolved route.
func newScreen(e env, res route.Resolution, a Auth) screen {
	switch res.Name {
	case route.About:
		return newAboutScreen(e)
	case route.Team:
		return newTeamScreen(e)
	case route.Login:
		return newLoginScreen(e, a)
	case route.Register:
		return newRegisterScreen(e, a)
	case route.UserHome:
		return newPostListScreen(e, false)
	case route.PostDetail:
		return newPostDetailScreen(e, res.Param("id"))
	case route.AuthorDash:
		return newAuthorDashboard(e)
	case route.AuthorPosts:
		return newPostListScreen(e, true)
	case route.CreatePost:
		return newComposeScreen(e, "")
	case route.EditPost:
		return newComposeScreen(e, res.Param("id"))
	case route.AdminDashboard:
		return newAdminDashboard(e)
	case route.ManageUsers:
		return newManageUsersScreen(e)
	case route.UserDetail:
		return newUserDetailScreen(e, res.Param("id"))
	case route.ReaderProfile, route.AuthorProfile, route.AdminProfile:
		return newProfileScreen(e)
	}
	return newHomeScreen(e)
}
