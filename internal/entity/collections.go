package entity

import "github.com/Marco3041/linkedin-clone/internal/docstore"

// Collection paths and the field names written into documents. Field names
// are shared with the web client.
const (
	CollectionUsers         = "users"
	CollectionPosts         = "posts"
	CollectionComments      = "comments"
	CollectionGroups        = "groups"
	CollectionJobs          = "jobs"
	CollectionApplications  = "applications"
	CollectionNotifications = "notifications"
	CollectionMessages      = "messages"
	CollectionCredentials   = "credentials"
	CollectionMedia         = "media"

	FieldTimestamp   = "timestamp"
	FieldLikes       = "likes"
	FieldMembers     = "members"
	FieldConnections = "connections"
	FieldUserID      = "userId"
	FieldChatID      = "chatId"
)

func UserPath(uid string) string {
	return docstore.Doc(CollectionUsers, uid)
}

func PostPath(postID string) string {
	return docstore.Doc(CollectionPosts, postID)
}

// CommentsPath is the comment sub-collection of a post.
func CommentsPath(postID string) string {
	return docstore.SubCollection(PostPath(postID), CollectionComments)
}

func GroupPath(groupID string) string {
	return docstore.Doc(CollectionGroups, groupID)
}

func JobPath(jobID string) string {
	return docstore.Doc(CollectionJobs, jobID)
}
