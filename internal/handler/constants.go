// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamSlug is the slug parameter pattern.
	RouteParamSlug = "/{slug}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteRegister is the registration route.
	RouteRegister = "/register"
	// RouteProfile is the profile route.
	RouteProfile = "/profile"
	// RouteProfilePassword is the password change route.
	RouteProfilePassword = RouteProfile + "/password"
	// RouteContact is the contact form route.
	RouteContact = "/contact"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteAdmin is the admin area mount point.
	RouteAdmin = "/admin"

	// RoutePosts is the public post listing route.
	RoutePosts = "/posts"
	// RoutePostsSlug is the public post detail route pattern.
	RoutePostsSlug = RoutePosts + RouteParamSlug
	// RoutePostsID is the post ID route pattern for engagement actions.
	RoutePostsID = RoutePosts + RouteParamID
	// RoutePostLike is the like route pattern.
	RoutePostLike = RoutePostsID + "/like"
	// RoutePostUnlike is the unlike route pattern.
	RoutePostUnlike = RoutePostsID + "/unlike"
	// RoutePostFavorite is the favorite route pattern.
	RoutePostFavorite = RoutePostsID + "/favorite"
	// RoutePostUnfavorite is the unfavorite route pattern.
	RoutePostUnfavorite = RoutePostsID + "/unfavorite"
	// RoutePostComments is the comment creation route pattern.
	RoutePostComments = RoutePostsID + "/comments"
	// RouteCommentsID is the comment route pattern.
	RouteCommentsID = "/comments" + RouteParamID

	// RouteUsers is the users admin route.
	RouteUsers = "/users"
	// RouteUsersID is the users ID route pattern.
	RouteUsersID = RouteUsers + RouteParamID
	// RouteComments is the comment moderation admin route.
	RouteComments = "/comments"
	// RouteCommentsApprove is the comment approval route pattern.
	RouteCommentsApprove = RouteComments + RouteParamID + "/approve"
	// RouteMessages is the contact messages admin route.
	RouteMessages = "/messages"
	// RoutePostsPublish is the post publish route pattern.
	RoutePostsPublish = RoutePostsID + "/publish"
	// RoutePostsUnpublish is the post unpublish route pattern.
	RoutePostsUnpublish = RoutePostsID + "/unpublish"
)

const (
	redirectHome          = "/"
	redirectLogin         = RouteLogin
	redirectRegister      = RouteRegister
	redirectProfile       = RouteProfile
	redirectContact       = RouteContact
	redirectPosts         = RoutePosts
	redirectPostSlug      = RoutePosts + "/%s"
	redirectAdmin         = "/admin"
	redirectAdminUsers    = redirectAdmin + RouteUsers
	redirectAdminUsersID  = redirectAdminUsers + "/%d"
	redirectAdminPosts    = redirectAdmin + RoutePosts
	redirectAdminPostsNew = redirectAdminPosts + RouteSuffixNew
	redirectAdminPostsID  = redirectAdminPosts + "/%d"
	redirectAdminComments = redirectAdmin + RouteComments
	redirectAdminMessages = redirectAdmin + RouteMessages
)
