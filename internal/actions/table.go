package actions

// Action categories.
const (
	CategoryUser         = "user"
	CategoryPosts        = "posts"
	CategorySearch       = "search"
	CategorySpaces       = "spaces"
	CategoryOrganization = "organization"
	CategoryLists        = "lists"
	CategoryCommunity    = "community"
	CategoryJobs         = "jobs"
	CategoryTrends       = "trends"
	CategoryDeprecated   = "deprecated"
)

const (
	defaultCount    = "20"
	defaultIDsCount = "5000"
	defaultType     = "Top"
	defaultWOEID    = "1"
)

// Shared field shapes.
var (
	userField      = Field{Name: "user", Aliases: []string{"user", "user_id"}, Required: true}
	usernameField  = Field{Name: "username", Required: true}
	pidField       = Field{Name: "pid", Aliases: []string{"pid", "post_id"}, Required: true}
	tweetIDField   = Field{Name: "pid", Aliases: []string{"tweet_id", "pid"}, Required: true}
	queryField     = Field{Name: "query", Required: true}
	listIDField    = Field{Name: "listId", Aliases: []string{"listId", "list_id"}, Required: true}
	communityField = Field{Name: "communityId", Aliases: []string{"communityId", "community_id"}, Required: true}
	countField     = Field{Name: "count", Default: defaultCount}
	idsCountField  = Field{Name: "count", Default: defaultIDsCount}
	typeField      = Field{Name: "type", Default: defaultType}
	cursorField    = Field{Name: "cursor"}
)

func paged(subject Field) []Field {
	return []Field{subject, countField, cursorField}
}

// DefaultSpecs returns the twitter241 action table in discovery order.
func DefaultSpecs() []ActionSpec {
	return []ActionSpec{
		// User
		{Name: "get_user_by_username", Category: CategoryUser, Path: "/user", Fields: []Field{usernameField}},
		{Name: "get_users_by_ids", Category: CategoryUser, Path: "/get-users", Fields: []Field{{Name: "ids", Required: true}}},
		{Name: "get_users_by_ids_v2", Category: CategoryUser, Path: "/get-users-v2", Fields: []Field{{Name: "rest_ids", Required: true}}},
		{Name: "get_user_replies", Category: CategoryUser, Path: "/user-replies", Fields: paged(userField)},
		{Name: "get_user_replies_v2", Category: CategoryUser, Path: "/user-replies-v2", Fields: paged(userField)},
		{Name: "get_user_media", Category: CategoryUser, Path: "/user-media", Fields: paged(userField)},
		{Name: "get_user_tweets", Category: CategoryUser, Path: "/user-tweets", Fields: paged(userField)},
		{Name: "get_user_followings", Category: CategoryUser, Path: "/followings", Fields: paged(userField)},
		{Name: "get_user_following_ids", Category: CategoryUser, Path: "/following-ids", Fields: []Field{usernameField, idsCountField, cursorField}},
		{Name: "get_user_followers", Category: CategoryUser, Path: "/followers", Fields: paged(userField)},
		{Name: "get_user_followers_ids", Category: CategoryUser, Path: "/followers-ids", Fields: []Field{usernameField, idsCountField, cursorField}},
		{Name: "get_user_verified_followers", Category: CategoryUser, Path: "/verified-followers", Fields: paged(userField)},
		{Name: "get_highlights", Category: CategoryUser, Path: "/highlights", Fields: paged(userField)},

		// Posts
		{Name: "get_post_comments", Category: CategoryPosts, Path: "/comments", Fields: paged(pidField)},
		{Name: "get_post_comments_v2", Category: CategoryPosts, Path: "/comments-v2", Fields: paged(pidField)},
		{Name: "get_post_quotes", Category: CategoryPosts, Path: "/quotes", Fields: paged(pidField)},
		{Name: "get_post_retweets", Category: CategoryPosts, Path: "/retweets", Fields: paged(pidField)},
		{Name: "get_tweet_details", Category: CategoryPosts, Path: "/tweet", Fields: []Field{tweetIDField}},
		{Name: "get_tweet_details_v2", Category: CategoryPosts, Path: "/tweet-v2", Fields: []Field{tweetIDField}},
		{Name: "get_tweets_by_ids", Category: CategoryPosts, Path: "/tweet-by-ids", Fields: []Field{{Name: "ids", Required: true}}},

		// Search
		{Name: "search_twitter", Category: CategorySearch, Path: "/search", Fields: []Field{queryField, typeField, countField, cursorField}},
		{Name: "search_twitter_v2", Category: CategorySearch, Path: "/search-v2", Fields: []Field{queryField, typeField, countField, cursorField}},
		{Name: "autocomplete", Category: CategorySearch, Path: "/autocomplete", Fields: []Field{queryField}},

		// Spaces
		{Name: "get_space_details", Category: CategorySpaces, Path: "/spaces", Fields: []Field{{Name: "id", Aliases: []string{"id", "space_id"}, Required: true}}},

		// Organization
		{Name: "get_organization_affiliates", Category: CategoryOrganization, Path: "/org-affiliates", Fields: []Field{{Name: "id", Aliases: []string{"id", "org_id"}, Required: true}}},

		// Lists
		{Name: "search_lists", Category: CategoryLists, Path: "/search-lists", Fields: []Field{queryField}},
		{Name: "get_list_details", Category: CategoryLists, Path: "/list-details", Fields: []Field{listIDField}},
		{Name: "get_list_timeline", Category: CategoryLists, Path: "/list-timeline", Fields: paged(listIDField)},
		{Name: "get_list_followers", Category: CategoryLists, Path: "/list-followers", Fields: paged(listIDField)},
		{Name: "get_list_members", Category: CategoryLists, Path: "/list-members", Fields: paged(listIDField)},

		// Community
		{Name: "search_community", Category: CategoryCommunity, Path: "/search-community", Fields: []Field{queryField}},
		{Name: "get_community_topics", Category: CategoryCommunity, Path: "/community-topics"},
		{Name: "fetch_popular_community", Category: CategoryCommunity, Path: "/fetch-popular-community"},
		{Name: "get_community_timeline", Category: CategoryCommunity, Path: "/explore-community-timeline"},
		{Name: "get_community_members", Category: CategoryCommunity, Path: "/community-members", Fields: paged(communityField)},
		{Name: "get_community_moderators", Category: CategoryCommunity, Path: "/community-moderators", Fields: paged(communityField)},
		{Name: "get_community_tweets", Category: CategoryCommunity, Path: "/community-tweets", Fields: []Field{communityField, typeField, countField, cursorField}},
		{Name: "get_community_about", Category: CategoryCommunity, Path: "/community-about", Fields: []Field{communityField}},
		{Name: "get_community_details", Category: CategoryCommunity, Path: "/community-details", Fields: []Field{communityField}},

		// Jobs
		{Name: "search_job_locations", Category: CategoryJobs, Path: "/jobs-locations-suggest", Fields: []Field{queryField}},
		{Name: "search_jobs", Category: CategoryJobs, Path: "/jobs-search", Fields: []Field{queryField, countField, {Name: "location"}, cursorField}},
		{Name: "get_job_details", Category: CategoryJobs, Path: "/job-details", Fields: []Field{{Name: "jobId", Aliases: []string{"jobId", "job_id"}, Required: true}}},

		// Trends
		{Name: "get_trends_locations", Category: CategoryTrends, Path: "/trends-locations"},
		{Name: "get_trends_by_location", Category: CategoryTrends, Path: "/trends-by-location", Fields: []Field{{Name: "woeid", Default: defaultWOEID}}},

		// Deprecated upstream endpoints, still routed
		{Name: "get_post_likes", Category: CategoryDeprecated, Path: "/likes", Fields: paged(pidField), Deprecated: true},
		{Name: "get_user_likes", Category: CategoryDeprecated, Path: "/user-likes", Fields: paged(userField), Deprecated: true},
	}
}

// Default returns a registry of the twitter241 actions.
func Default() *Registry {
	r, err := NewRegistry(DefaultSpecs())
	if err != nil {
		panic(err)
	}
	return r
}
