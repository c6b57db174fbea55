package gallery

import (
	"k8s.io/klog/v2"
)

// ImageSource looks up indexed images.
type ImageSource interface {
	Image(id string) (*Image, bool)
}

// PostSource lists posts, in publication order.
type PostSource interface {
	PostsInGalleries(ids []int, statuses []Status) []Post
	PostsInCategory(id int, statuses []Status) []Post
}

// LinkResolver returns the permalink of a post.
type LinkResolver interface {
	Permalink(p Post) string
}

// statuses returns the post statuses a block may show.
func statuses(includeUnpublished bool) []Status {
	if includeUnpublished {
		return []Status{StatusPublish, StatusDraft, StatusPending, StatusPrivate}
	}
	return []Status{StatusPublish}
}

// attachments returns the featured images of the posts f selects. Posts
// without a known featured image are left out.
func attachments(posts PostSource, images ImageSource, f Filter, includeUnpublished bool) []Attachment {
	st := statuses(includeUnpublished)

	var ps []Post
	if f.SourceType == SourceCategory {
		ps = posts.PostsInCategory(f.Categories[0], st)
	} else {
		ps = posts.PostsInGalleries(f.Galleries, st)
	}
	klog.V(1).Infof("found %d posts for %+v", len(ps), f)

	as := []Attachment{}
	for _, p := range ps {
		if p.Featured == "" {
			klog.V(1).Infof("post %d (%s) has no featured image", p.ID, p.Title)
			continue
		}

		i, ok := images.Image(p.Featured)
		if !ok {
			klog.Warningf("post %d (%s): featured image %q is not in the index", p.ID, p.Title, p.Featured)
			continue
		}
		as = append(as, Attachment{Image: i, Post: p})
	}

	klog.V(1).Infof("returning %d attachments", len(as))
	return as
}

// shape limits as to limit entries when limit is positive.
func shape(as []Attachment, limit int) []Attachment {
	if limit > 0 && len(as) > limit {
		return as[:limit]
	}
	return as
}
