package consts

const (
	TokenBlacklistKey = "auth:token:blacklist:"
	UserOnlineKey     = "presence:online:"
)
