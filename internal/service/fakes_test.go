package service

import (
	"Aviary/internal/model"
	"Aviary/internal/pkg/consts"
	"Aviary/internal/repository"
	"context"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// 内存版仓储实现，镜像 MongoDB 过滤语义，供服务层测试使用

var errDuplicateKey = mongo.WriteException{WriteErrors: mongo.WriteErrors{mongo.WriteError{Code: 11000}}}

func cloneSnapshot(s *model.Snapshot) *model.Snapshot {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Data != nil {
		d := *s.Data
		cp.Data = &d
	}
	if s.Body != nil {
		b := *s.Body
		cp.Body = &b
	}
	return &cp
}

func cloneContent(c *model.Content) *model.Content {
	cp := *c
	cp.QuotedPost = cloneSnapshot(c.QuotedPost)
	cp.ParentPost = cloneSnapshot(c.ParentPost)
	cp.RootPost = cloneSnapshot(c.RootPost)
	return &cp
}

func cloneUser(u *model.User) *model.User {
	cp := *u
	cp.Following = append([]primitive.ObjectID{}, u.Following...)
	cp.Followers = append([]primitive.ObjectID{}, u.Followers...)
	return &cp
}

type fakeContentRepo struct {
	docs map[primitive.ObjectID]*model.Content
	seq  map[primitive.ObjectID]int
	next int
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{
		docs: map[primitive.ObjectID]*model.Content{},
		seq:  map[primitive.ObjectID]int{},
	}
}

func (f *fakeContentRepo) snapSlot(c *model.Content, loc repository.SnapshotLocation) **model.Snapshot {
	switch loc {
	case repository.LocationQuoted:
		return &c.QuotedPost
	case repository.LocationParent:
		return &c.ParentPost
	case repository.LocationRoot:
		return &c.RootPost
	}
	return nil
}

func (f *fakeContentRepo) Insert(_ context.Context, c *model.Content) (primitive.ObjectID, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.docs[c.ID] = cloneContent(c)
	f.next++
	f.seq[c.ID] = f.next
	return c.ID, nil
}

func (f *fakeContentRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Content, error) {
	c, ok := f.docs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneContent(c), nil
}

func (f *fakeContentRepo) list(match func(*model.Content) bool, skip, limit int64, asc bool) []*model.Content {
	var items []*model.Content
	for _, c := range f.docs {
		if match(c) {
			items = append(items, c)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		ti, tj := items[i].Data.Timestamp, items[j].Data.Timestamp
		if ti.Equal(tj) {
			if asc {
				return f.seq[items[i].ID] < f.seq[items[j].ID]
			}
			return f.seq[items[i].ID] > f.seq[items[j].ID]
		}
		if asc {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if skip >= int64(len(items)) {
		return nil
	}
	items = items[skip:]
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	out := make([]*model.Content, 0, len(items))
	for _, c := range items {
		out = append(out, cloneContent(c))
	}
	return out
}

func isFeedEntry(c *model.Content) bool {
	return c.Kind == consts.ContentKindPost || c.Data.Repost
}

func (f *fakeContentRepo) ListFeed(_ context.Context, authorIDs []primitive.ObjectID, skip, limit int64) ([]*model.Content, error) {
	authors := map[primitive.ObjectID]bool{}
	for _, id := range authorIDs {
		authors[id] = true
	}
	return f.list(func(c *model.Content) bool {
		return authors[c.Data.User.ID] && isFeedEntry(c)
	}, skip, limit, false), nil
}

func (f *fakeContentRepo) ListPostsByAuthor(_ context.Context, username string, skip, limit int64) ([]*model.Content, error) {
	return f.list(func(c *model.Content) bool {
		return c.Data.User.Username == username && isFeedEntry(c)
	}, skip, limit, false), nil
}

func (f *fakeContentRepo) ListCommentsByAuthor(_ context.Context, username string, skip, limit int64) ([]*model.Content, error) {
	return f.list(func(c *model.Content) bool {
		return c.Data.User.Username == username && c.Kind == consts.ContentKindComment && !c.Data.Repost
	}, skip, limit, false), nil
}

func (f *fakeContentRepo) ListReplies(_ context.Context, parentID primitive.ObjectID, skip, limit int64) ([]*model.Content, error) {
	return f.list(func(c *model.Content) bool {
		return c.ParentPost != nil && c.ParentPost.ID == parentID && !c.Data.Repost
	}, skip, limit, true), nil
}

func (f *fakeContentRepo) count(match func(*model.Content) bool) int64 {
	var n int64
	for _, c := range f.docs {
		if match(c) {
			n++
		}
	}
	return n
}

func (f *fakeContentRepo) CountComments(_ context.Context, id primitive.ObjectID) (int64, error) {
	return f.count(func(c *model.Content) bool {
		return c.ParentPost != nil && c.ParentPost.ID == id && !c.Data.Repost
	}), nil
}

func (f *fakeContentRepo) CountReposts(_ context.Context, originID primitive.ObjectID) (int64, error) {
	return f.count(func(c *model.Content) bool {
		return c.Data.PostID == originID && c.Data.Repost
	}), nil
}

func (f *fakeContentRepo) CountByAuthor(_ context.Context, userID primitive.ObjectID, kind string) (int64, error) {
	return f.count(func(c *model.Content) bool {
		return c.Data.User.ID == userID && c.Kind == kind && !c.Data.Repost
	}), nil
}

func (f *fakeContentRepo) UpdateBodyText(_ context.Context, originID primitive.ObjectID, text string) error {
	for _, c := range f.docs {
		if c.Data.PostID == originID {
			c.Body.Text = text
		}
	}
	return nil
}

func (f *fakeContentRepo) UpdateSnapshotText(_ context.Context, loc repository.SnapshotLocation, originID primitive.ObjectID, text string) error {
	for _, c := range f.docs {
		slot := f.snapSlot(c, loc)
		if slot == nil || *slot == nil {
			continue
		}
		snap := *slot
		if snap.Data != nil && snap.Data.PostID == originID && snap.Body != nil {
			snap.Body.Text = text
		}
	}
	return nil
}

func (f *fakeContentRepo) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeContentRepo) DeleteByOrigin(_ context.Context, originID primitive.ObjectID) (int64, error) {
	var n int64
	for id, c := range f.docs {
		if c.Data.PostID == originID {
			delete(f.docs, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeContentRepo) ClearReferenceByID(_ context.Context, loc repository.SnapshotLocation, id primitive.ObjectID) error {
	for _, c := range f.docs {
		slot := f.snapSlot(c, loc)
		if slot != nil && *slot != nil && (*slot).ID == id {
			*slot = nil
		}
	}
	return nil
}

func (f *fakeContentRepo) ClearReferenceByOrigin(_ context.Context, loc repository.SnapshotLocation, originID primitive.ObjectID) error {
	for _, c := range f.docs {
		slot := f.snapSlot(c, loc)
		if slot == nil || *slot == nil {
			continue
		}
		snap := *slot
		if snap.Data != nil && snap.Data.PostID == originID {
			*slot = nil
		}
	}
	return nil
}

func applyAuthorSnapshot(target *model.AuthorSnapshot, userID primitive.ObjectID, snap model.AuthorSnapshot) {
	if target.ID == userID {
		target.Username = snap.Username
		target.Nickname = snap.Nickname
		target.Avatar = snap.Avatar
	}
}

func (f *fakeContentRepo) UpdateAuthorSnapshot(_ context.Context, loc repository.SnapshotLocation, userID primitive.ObjectID, snap model.AuthorSnapshot) error {
	for _, c := range f.docs {
		if loc == repository.LocationSelf {
			applyAuthorSnapshot(&c.Data.User, userID, snap)
			applyAuthorSnapshot(&c.Body.User, userID, snap)
			continue
		}
		slot := f.snapSlot(c, loc)
		if slot == nil || *slot == nil {
			continue
		}
		embedded := *slot
		if embedded.Data != nil {
			applyAuthorSnapshot(&embedded.Data.User, userID, snap)
		}
		if embedded.Body != nil {
			applyAuthorSnapshot(&embedded.Body.User, userID, snap)
		}
	}
	return nil
}

func (f *fakeContentRepo) DistinctAuthorIDs(_ context.Context) ([]primitive.ObjectID, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, c := range f.docs {
		if !seen[c.Data.User.ID] {
			seen[c.Data.User.ID] = true
			ids = append(ids, c.Data.User.ID)
		}
	}
	return ids, nil
}

func (f *fakeContentRepo) DeleteByAuthors(_ context.Context, userIDs []primitive.ObjectID) (int64, error) {
	authors := map[primitive.ObjectID]bool{}
	for _, id := range userIDs {
		authors[id] = true
	}
	var n int64
	for id, c := range f.docs {
		if authors[c.Data.User.ID] {
			delete(f.docs, id)
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*model.User{}}
}

func (f *fakeUserRepo) Insert(_ context.Context, u *model.User) (primitive.ObjectID, error) {
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return primitive.NilObjectID, errDuplicateKey
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID] = cloneUser(u)
	return u.ID, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneUser(u), nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) listSorted(match func(*model.User) bool, skip, limit int64) []*model.User {
	var users []*model.User
	for _, u := range f.users {
		if match(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return strings.Compare(users[i].Username, users[j].Username) < 0
	})
	if skip >= int64(len(users)) {
		return nil
	}
	users = users[skip:]
	if limit > 0 && int64(len(users)) > limit {
		users = users[:limit]
	}
	out := make([]*model.User, 0, len(users))
	for _, u := range users {
		out = append(out, cloneUser(u))
	}
	return out
}

func (f *fakeUserRepo) List(_ context.Context, excludeUsername string, skip, limit int64) ([]*model.User, error) {
	return f.listSorted(func(u *model.User) bool {
		return excludeUsername == "" || u.Username != excludeUsername
	}, skip, limit), nil
}

func (f *fakeUserRepo) ListFollowers(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]*model.User, error) {
	return f.listSorted(func(u *model.User) bool {
		return containsID(u.Following, userID)
	}, skip, limit), nil
}

func (f *fakeUserRepo) ListFollowing(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]*model.User, error) {
	return f.listSorted(func(u *model.User) bool {
		return containsID(u.Followers, userID)
	}, skip, limit), nil
}

func (f *fakeUserRepo) AddFollow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	if follower, ok := f.users[followerID]; ok && !containsID(follower.Following, targetID) {
		follower.Following = append(follower.Following, targetID)
	}
	if target, ok := f.users[targetID]; ok && !containsID(target.Followers, followerID) {
		target.Followers = append(target.Followers, followerID)
	}
	return nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeUserRepo) RemoveFollow(_ context.Context, followerID, targetID primitive.ObjectID) error {
	if follower, ok := f.users[followerID]; ok {
		follower.Following = removeID(follower.Following, targetID)
	}
	if target, ok := f.users[targetID]; ok {
		target.Followers = removeID(target.Followers, followerID)
	}
	return nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	u, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for k, v := range fields {
		value, _ := v.(string)
		switch k {
		case "username":
			u.Username = value
		case "email":
			u.Email = value
		case "nickname":
			u.Nickname = value
		case "bio":
			u.Bio = value
		case "avatar":
			u.Avatar = value
		case "header":
			u.Header = value
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Password = passwordHash
	return nil
}

func (f *fakeUserRepo) CountGuests(_ context.Context) (int64, error) {
	var n int64
	for _, u := range f.users {
		if u.Kind == consts.UserKindGuest {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) SampleNonGuests(_ context.Context, n int) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, u := range f.listSorted(func(u *model.User) bool {
		return u.Kind != consts.UserKindGuest
	}, 0, int64(n)) {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (f *fakeUserRepo) FilterExisting(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	existing := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if _, ok := f.users[id]; ok {
			existing[id] = true
		}
	}
	return existing, nil
}

func (f *fakeUserRepo) PullFollowRefs(_ context.Context, ids []primitive.ObjectID) error {
	for _, u := range f.users {
		for _, id := range ids {
			u.Following = removeID(u.Following, id)
			u.Followers = removeID(u.Followers, id)
		}
	}
	return nil
}

type likeKey struct {
	user primitive.ObjectID
	post primitive.ObjectID
}

type fakeLikeRepo struct {
	likes map[likeKey]*model.Like
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: map[likeKey]*model.Like{}}
}

func (f *fakeLikeRepo) Insert(_ context.Context, like *model.Like) (bool, error) {
	key := likeKey{user: like.User, post: like.Post}
	if _, ok := f.likes[key]; ok {
		return false, nil
	}
	if like.ID.IsZero() {
		like.ID = primitive.NewObjectID()
	}
	cp := *like
	f.likes[key] = &cp
	return true, nil
}

func (f *fakeLikeRepo) Delete(_ context.Context, userID, postID primitive.ObjectID) (bool, error) {
	key := likeKey{user: userID, post: postID}
	if _, ok := f.likes[key]; !ok {
		return false, nil
	}
	delete(f.likes, key)
	return true, nil
}

func (f *fakeLikeRepo) DeleteByPost(_ context.Context, postID primitive.ObjectID) error {
	for key := range f.likes {
		if key.post == postID {
			delete(f.likes, key)
		}
	}
	return nil
}

func (f *fakeLikeRepo) DeleteByUsers(_ context.Context, userIDs []primitive.ObjectID) error {
	users := map[primitive.ObjectID]bool{}
	for _, id := range userIDs {
		users[id] = true
	}
	for key := range f.likes {
		if users[key.user] {
			delete(f.likes, key)
		}
	}
	return nil
}

func (f *fakeLikeRepo) Exists(_ context.Context, userID, postID primitive.ObjectID) (bool, error) {
	_, ok := f.likes[likeKey{user: userID, post: postID}]
	return ok, nil
}

func (f *fakeLikeRepo) CountByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	var n int64
	for key := range f.likes {
		if key.post == postID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLikeRepo) CountByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for key := range f.likes {
		if key.user == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLikeRepo) ListByUser(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]*model.Like, error) {
	var likes []*model.Like
	for _, l := range f.likes {
		if l.User == userID {
			cp := *l
			likes = append(likes, &cp)
		}
	}
	sort.Slice(likes, func(i, j int) bool {
		return likes[i].Timestamp.After(likes[j].Timestamp)
	})
	if skip >= int64(len(likes)) {
		return nil, nil
	}
	likes = likes[skip:]
	if limit > 0 && int64(len(likes)) > limit {
		likes = likes[:limit]
	}
	return likes, nil
}

func (f *fakeLikeRepo) FilterLiked(_ context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	liked := map[primitive.ObjectID]bool{}
	for _, postID := range postIDs {
		if _, ok := f.likes[likeKey{user: userID, post: postID}]; ok {
			liked[postID] = true
		}
	}
	return liked, nil
}

func (f *fakeLikeRepo) DistinctUserIDs(_ context.Context) ([]primitive.ObjectID, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for key := range f.likes {
		if !seen[key.user] {
			seen[key.user] = true
			ids = append(ids, key.user)
		}
	}
	return ids, nil
}
