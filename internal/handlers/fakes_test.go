package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/linkup/backend/internal/middleware"
	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/anonto42/linkup/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory stand-in for every repository.
type memStore struct {
	mu       sync.Mutex
	seq      int
	now      time.Time
	users    map[string]*models.User
	creds    map[string]models.CredentialDocument
	posts    map[string]*models.PostDocument
	comments map[string]models.CommentDocument
	follows  map[[2]string]bool
	stories  map[string]models.StoryDocument
	actions  []models.ModerationAction
	// failWith is returned by every call when set.
	failWith error
	// upsertErr is returned by UpsertUser only.
	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{
		now:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		users:    map[string]*models.User{},
		creds:    map[string]models.CredentialDocument{},
		posts:    map[string]*models.PostDocument{},
		comments: map[string]models.CommentDocument{},
		follows:  map[[2]string]bool{},
		stories:  map[string]models.StoryDocument{},
	}
}

func (s *memStore) nextID(prefix string) (string, time.Time) {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq), s.now.Add(time.Duration(s.seq) * time.Second)
}

func (s *memStore) addUser(id, role, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = &models.User{ID: id, Email: id + "@example.com", FirstName: id, Role: role, Status: status, Friends: []string{}, FriendRequests: []string{}, OtherLinks: []models.Link{}}
}

// UserRepository

func (s *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) UpsertUser(_ context.Context, in models.UpsertUser) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	for id, other := range s.users {
		if in.Email != "" && id != in.ID && strings.EqualFold(other.Email, in.Email) {
			return nil, repositories.ErrConflict
		}
	}
	u, ok := s.users[in.ID]
	if !ok {
		u = &models.User{ID: in.ID, Role: models.RoleUser, Status: models.StatusActive, Friends: []string{}, FriendRequests: []string{}, OtherLinks: []models.Link{}}
		s.users[in.ID] = u
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	if in.FirstName != "" {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}
	if in.ProfileImageURL != "" {
		u.ProfileImageURL = in.ProfileImageURL
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) UpdateProfile(_ context.Context, id string, req models.UpdateProfileRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if req.Bio != "" {
		u.Bio = req.Bio
	}
	if req.Title != "" {
		u.Title = req.Title
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) SearchUsers(_ context.Context, query string, _ int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.FirstName), strings.ToLower(query)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *memStore) ListUsers(context.Context, repositories.Page) (*models.UserPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page := &models.UserPage{Items: []models.User{}}
	for _, u := range s.users {
		page.Items = append(page.Items, *u)
	}
	return page, nil
}

func (s *memStore) SetStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Status = status
	return nil
}

func (s *memStore) CountUsers(_ context.Context, status string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	var n int64
	for _, u := range s.users {
		if status == "" || u.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *memStore) GetFriends(_ context.Context, id string) ([]models.User, error) {
	return s.resolve(id, func(u *models.User) []string { return u.Friends })
}

func (s *memStore) GetPendingRequests(_ context.Context, id string) ([]models.User, error) {
	return s.resolve(id, func(u *models.User) []string { return u.FriendRequests })
}

func (s *memStore) resolve(id string, set func(*models.User) []string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := []models.User{}
	for _, other := range set(u) {
		if o, ok := s.users[other]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

// CredentialRepository

func (s *memStore) CreateCredential(_ context.Context, userID, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.creds[email]; ok {
		return repositories.ErrConflict
	}
	s.creds[email] = models.CredentialDocument{UserID: userID, Email: email, PasswordHash: hash}
	return nil
}

func (s *memStore) GetCredentialByEmail(_ context.Context, email string) (*models.CredentialDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creds[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (s *memStore) DeleteCredential(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, c := range s.creds {
		if c.UserID == userID {
			delete(s.creds, email)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// PostRepository

func (s *memStore) CreatePost(_ context.Context, authorID string, req models.CreatePostRequest) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	id, at := s.nextID("post")
	doc := &models.PostDocument{ID: id, UserID: authorID, Content: req.Content, ImageURL: req.ImageURL, VideoURL: req.VideoURL, LikedBy: []string{}, CreatedAt: at, UpdatedAt: at}
	s.posts[id] = doc
	post := repositories.MapPost(*doc)
	return &post, nil
}

func (s *memStore) view(doc *models.PostDocument, viewerID string) models.PostView {
	author := models.User{ID: doc.UserID}
	if u, ok := s.users[doc.UserID]; ok {
		author = *u
	}
	liked := false
	for _, id := range doc.LikedBy {
		liked = liked || id == viewerID
	}
	return models.PostView{Post: repositories.MapPost(*doc), User: author, IsLiked: liked}
}

func (s *memStore) GetPostByID(_ context.Context, id, viewerID string) (*models.PostView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	v := s.view(doc, viewerID)
	return &v, nil
}

func (s *memStore) ListPosts(ctx context.Context, viewerID string, page repositories.Page) (*models.PostPage, error) {
	return s.ListPostsByAuthor(ctx, "", viewerID, page)
}

func (s *memStore) ListPostsByAuthor(_ context.Context, authorID, viewerID string, _ repositories.Page) (*models.PostPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	page := &models.PostPage{Items: []models.PostView{}}
	for _, doc := range s.posts {
		if authorID == "" || doc.UserID == authorID {
			page.Items = append(page.Items, s.view(doc, viewerID))
		}
	}
	sort.Slice(page.Items, func(i, j int) bool { return page.Items[i].CreatedAt.After(page.Items[j].CreatedAt) })
	return page, nil
}

func (s *memStore) SearchPosts(_ context.Context, query, viewerID string, _ int64) ([]models.PostView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PostView{}
	for _, doc := range s.posts {
		if strings.Contains(strings.ToLower(doc.Content), strings.ToLower(query)) {
			out = append(out, s.view(doc, viewerID))
		}
	}
	return out, nil
}

func (s *memStore) DeletePost(_ context.Context, id, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if doc.UserID != requesterID {
		return repositories.ErrOwnership
	}
	s.deletePostLocked(id)
	return nil
}

func (s *memStore) AdminDeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	s.deletePostLocked(id)
	return nil
}

func (s *memStore) deletePostLocked(id string) {
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

func (s *memStore) CountPosts(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.posts)), nil
}

// CommentRepository

func (s *memStore) CreateComment(_ context.Context, postID, authorID, content string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	id, at := s.nextID("comment")
	doc := models.CommentDocument{ID: id, PostID: postID, UserID: authorID, Content: content, CreatedAt: at}
	s.comments[id] = doc
	post.CommentsCount++
	c := repositories.MapComment(doc)
	return &c, nil
}

func (s *memStore) ListComments(_ context.Context, postID string) ([]models.CommentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CommentView{}
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, models.CommentView{Comment: repositories.MapComment(c), User: models.User{ID: c.UserID}})
		}
	}
	return out, nil
}

func (s *memStore) DeleteComment(_ context.Context, id, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if c.UserID != requesterID {
		return repositories.ErrOwnership
	}
	delete(s.comments, id)
	if post, ok := s.posts[c.PostID]; ok {
		post.CommentsCount--
	}
	return nil
}

func (s *memStore) CountComments(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.comments)), nil
}

// LikeRepository

func (s *memStore) ToggleLike(_ context.Context, postID, userID string) (*models.LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	for i, id := range post.LikedBy {
		if id == userID {
			post.LikedBy = append(post.LikedBy[:i], post.LikedBy[i+1:]...)
			return &models.LikeResult{Liked: false, LikesCount: len(post.LikedBy)}, nil
		}
	}
	post.LikedBy = append(post.LikedBy, userID)
	return &models.LikeResult{Liked: true, LikesCount: len(post.LikedBy)}, nil
}

func (s *memStore) IsLiked(_ context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	for _, id := range post.LikedBy {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// FollowRepository

func (s *memStore) ToggleFollow(_ context.Context, followerID, followingID string) (*models.FollowResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{followerID, followingID}
	if s.follows[key] {
		delete(s.follows, key)
		return &models.FollowResult{Following: false}, nil
	}
	s.follows[key] = true
	return &models.FollowResult{Following: true}, nil
}

func (s *memStore) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.follows[[2]string{followerID, followingID}], nil
}

func (s *memStore) GetFollowersCount(_ context.Context, userID string) (int64, error) {
	return s.countEdges(func(k [2]string) bool { return k[1] == userID }), nil
}

func (s *memStore) GetFollowingCount(_ context.Context, userID string) (int64, error) {
	return s.countEdges(func(k [2]string) bool { return k[0] == userID }), nil
}

func (s *memStore) countEdges(match func([2]string) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.follows {
		if match(k) {
			n++
		}
	}
	return n
}

// FriendshipRepository

func has(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

func without(set []string, id string) []string {
	out := []string{}
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (s *memStore) SendFriendRequest(_ context.Context, fromID, toID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	to, ok := s.users[toID]
	if !ok || has(to.FriendRequests, fromID) || has(to.Friends, fromID) {
		return false, nil
	}
	to.FriendRequests = append(to.FriendRequests, fromID)
	return true, nil
}

func (s *memStore) AcceptFriendRequest(_ context.Context, userID, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	requester, ok2 := s.users[requesterID]
	if !ok || !ok2 || !has(user.FriendRequests, requesterID) || has(user.Friends, requesterID) {
		return repositories.ErrTransactionAborted
	}
	user.FriendRequests = without(user.FriendRequests, requesterID)
	user.Friends = append(user.Friends, requesterID)
	requester.Friends = append(requester.Friends, userID)
	return nil
}

func (s *memStore) RejectFriendRequest(_ context.Context, userID, requesterID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || !has(user.FriendRequests, requesterID) {
		return false, nil
	}
	user.FriendRequests = without(user.FriendRequests, requesterID)
	return true, nil
}

func (s *memStore) RemoveFriend(_ context.Context, userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	friend, ok2 := s.users[friendID]
	if !ok || !ok2 || !has(user.Friends, friendID) || !has(friend.Friends, userID) {
		return repositories.ErrTransactionAborted
	}
	user.Friends = without(user.Friends, friendID)
	friend.Friends = without(friend.Friends, userID)
	return nil
}

// StoryRepository

func (s *memStore) CreateStory(_ context.Context, authorID string, req models.CreateStoryRequest) (*models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, at := s.nextID("story")
	doc := models.StoryDocument{ID: id, UserID: authorID, Content: req.Content, ImageURL: req.ImageURL, VideoURL: req.VideoURL, CreatedAt: at, ExpiresAt: at.Add(repositories.StoryTTL)}
	s.stories[id] = doc
	story := repositories.MapStory(doc)
	return &story, nil
}

func (s *memStore) ListStories(context.Context, string) ([]models.StoryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.StoryView{}
	for _, doc := range s.stories {
		out = append(out, models.StoryView{Story: repositories.MapStory(doc), User: models.User{ID: doc.UserID}})
	}
	return out, nil
}

func (s *memStore) DeleteStory(_ context.Context, id, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.stories[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if doc.UserID != requesterID {
		return repositories.ErrOwnership
	}
	delete(s.stories, id)
	return nil
}

func (s *memStore) PurgeExpiredStories(context.Context) (int64, error) {
	return 0, nil
}

func (s *memStore) CountActiveStories(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.stories)), nil
}

// ModerationRepository

func (s *memStore) RecordAction(_ context.Context, action *models.ModerationAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, *action)
	return nil
}

func (s *memStore) ListRecentActions(context.Context, int) ([]models.ModerationAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ModerationAction{}, s.actions...), nil
}

// Test server

const (
	headerUser = "X-Test-User"
	headerRole = "X-Test-Role"
)

// testIdentity stands in for the JWT and identity middleware.
func testIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Request().Header.Get(headerUser); id != "" {
			role := c.Request().Header.Get(headerRole)
			if role == "" {
				role = models.RoleUser
			}
			c.Set(middleware.IdentityKey, models.Identity{UserID: id, Role: role, Status: models.StatusActive})
		}
		return next(c)
	}
}

func newTestServer(t *testing.T, register func(public, api *echo.Group)) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	register(e.Group("/api/auth"), e.Group("/api", testIdentity))
	return e
}

type call struct {
	method string
	path   string
	user   string
	role   string
	body   interface{}
	header http.Header
	raw    io.Reader
}

func do(t *testing.T, e *echo.Echo, c call) *httptest.ResponseRecorder {
	t.Helper()
	body := c.raw
	if c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if c.user != "" {
		req.Header.Set(headerUser, c.user)
	}
	if c.role != "" {
		req.Header.Set(headerRole, c.role)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
