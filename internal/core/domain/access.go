package domain

// CanView decides per-post visibility. Public posts are visible to everyone;
// members-only posts need an active membership. The sketchbook's IsPublic flag
// only governs whether the feed itself is listed, see FeedVisible.
func CanView(sb *Sketchbook, post *Post, membership *Membership) bool {
	if post.Visibility == VisibilityPublic {
		return true
	}
	return membership.IsActive()
}

// FeedVisible reports whether the sketchbook's post list may be shown at all.
func FeedVisible(sb *Sketchbook, membership *Membership) bool {
	return sb.IsPublic || membership.IsActive()
}

func JoinCallToActionText(rule MembershipRule) string {
	switch rule.Kind {
	case RuleInviteOnly:
		return "Request Access"
	case RuleMinSpend:
		return "Unlock Sketchbook"
	default:
		return "Join for Free"
	}
}

func LockedPostsCount(sb *Sketchbook, posts []*Post, membership *Membership) int {
	locked := 0
	for _, p := range posts {
		if !CanView(sb, p, membership) {
			locked++
		}
	}
	return locked
}
