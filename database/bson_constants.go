package database

// Opérateurs MongoDB (évite les littéraux dupliqués)
const (
	BSONLookup   = "$lookup"
	BSONUnwind   = "$unwind"
	BSONMatch    = "$match"
	BSONSort     = "$sort"
	BSONSkip     = "$skip"
	BSONLimit    = "$limit"
	BSONProject  = "$project"
	BSONRegex    = "$regex"
	BSONOptions  = "$options"
	BSONSet      = "$set"
	BSONIn       = "$in"
	BSONOr       = "$or"
	BSONAddToSet = "$addToSet"
	BSONPull     = "$pull"
)

// Collections
const (
	CollectionUsers         = "users"
	CollectionRecettes      = "recettes"
	CollectionCommentaires  = "commentaires"
	CollectionFCMTokens     = "fcm_tokens"
	CollectionSubscriptions = "push_subscriptions"
)
