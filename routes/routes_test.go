package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"newspaper/app"
	"newspaper/config"
	"newspaper/logging"
	"newspaper/mailer"
	"newspaper/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type outbox struct {
	mu       sync.Mutex
	messages []mailer.Message
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages)
}

type envelope struct {
	Code        int             `json:"code"`
	CodeMessage json.RawMessage `json:"code_message"`
	CodeType    string          `json:"code_type"`
	Data        json.RawMessage `json:"data"`
}

type IntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	outbox *outbox
	token  string
	userID uint
}

func (suite *IntegrationTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(models.Migrate(db))
	suite.db = db

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		AdminEmails:        "admin@example.com",
		SiteDomain:         "example.com",
	}
	suite.outbox = &outbox{}
	a, err := app.NewWithDB(cfg, logging.Discard(), db, suite.outbox)
	suite.Require().NoError(err)
	suite.router = SetupRouter(a)

	// Register and login a test user
	suite.token, suite.userID = suite.register("testuser", "test@example.com")
}

func (suite *IntegrationTestSuite) request(method, path, token string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	if payload != nil {
		suite.Require().NoError(json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (suite *IntegrationTestSuite) register(username, email string) (string, uint) {
	w, env := suite.request("POST", "/api/v1/auth/register", "", models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "password123",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp models.AuthResponse
	suite.Require().NoError(json.Unmarshal(env.Data, &resp))
	return resp.Token, resp.User.ID
}

func (suite *IntegrationTestSuite) becomeAuthor(token string) string {
	w, env := suite.request("POST", "/api/v1/become-author", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp models.AuthResponse
	suite.Require().NoError(json.Unmarshal(env.Data, &resp))
	suite.Equal(models.RoleAuthor, resp.User.Role)
	return resp.Token
}

func (suite *IntegrationTestSuite) adminToken() string {
	token, _ := suite.register("admin", "admin@example.com")
	return token
}

func (suite *IntegrationTestSuite) createCategory(adminToken, name string) models.Category {
	w, env := suite.request("POST", "/api/v1/categories", adminToken, models.CreateCategoryRequest{Name: name})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var category models.Category
	suite.Require().NoError(json.Unmarshal(env.Data, &category))
	return category
}

func (suite *IntegrationTestSuite) TestHealth() {
	w, _ := suite.request("GET", "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *IntegrationTestSuite) TestMetricsEndpoint() {
	w, _ := suite.request("GET", "/metrics", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "go_goroutines")
}

func (suite *IntegrationTestSuite) TestAuthFlow() {
	w, env := suite.request("POST", "/api/v1/auth/login", "", models.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	})
	suite.Equal(http.StatusOK, w.Code)

	var resp models.AuthResponse
	suite.NoError(json.Unmarshal(env.Data, &resp))
	suite.NotEmpty(resp.Token)
	suite.Equal("testuser", resp.User.Username)
	suite.Equal(models.RoleCommon, resp.User.Role)

	w, _ = suite.request("POST", "/api/v1/auth/login", "", models.LoginRequest{
		Email:    "test@example.com",
		Password: "wrong-password",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, env = suite.request("POST", "/api/v1/auth/register", "", models.RegisterRequest{Username: "x", Email: "bad"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validationError", env.CodeType)
}

func (suite *IntegrationTestSuite) TestGetProfile() {
	w, env := suite.request("GET", "/api/v1/profile", suite.token, nil)
	suite.Equal(http.StatusOK, w.Code)

	var user models.User
	suite.NoError(json.Unmarshal(env.Data, &user))
	suite.Equal("testuser", user.Username)

	w, _ = suite.request("GET", "/api/v1/profile", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *IntegrationTestSuite) TestCommonUserCannotPublish() {
	w, env := suite.request("POST", "/api/v1/news", suite.token, models.PostRequest{
		Title:   "Breaking news",
		Content: strings.Repeat("n", 30),
	})
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("forbidden", env.CodeType)
}

func (suite *IntegrationTestSuite) TestCreateAndGetNews() {
	token := suite.becomeAuthor(suite.token)

	w, env := suite.request("POST", "/api/v1/news", token, models.PostRequest{
		Title:   "Редиска in town",
		Content: strings.Repeat("n", 30),
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created models.PostResponse
	suite.NoError(json.Unmarshal(env.Data, &created))
	suite.Equal(models.PostTypeNews, created.PostType)
	suite.Equal("Р****** in town", created.Title)
	suite.Equal("testuser", created.AuthorName)

	w, env = suite.request("GET", fmt.Sprintf("/api/v1/news/%d", created.ID), "", nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.request("GET", fmt.Sprintf("/api/v1/articles/%d", created.ID), "", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w, _ = suite.request("GET", fmt.Sprintf("/api/v1/posts/%d", created.ID), "", nil)
	suite.Equal(http.StatusOK, w.Code)

	w, env = suite.request("GET", "/api/v1/news?title=town", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	var list struct {
		Items      []models.PostResponse  `json:"items"`
		Pagination map[string]interface{} `json:"pagination"`
	}
	suite.NoError(json.Unmarshal(env.Data, &list))
	suite.Len(list.Items, 1)
	suite.EqualValues(1, list.Pagination["total_records"])
}

func (suite *IntegrationTestSuite) TestListLimitAboveMaximum() {
	author := models.Author{UserID: suite.userID}
	suite.Require().NoError(suite.db.Create(&author).Error)
	posts := make([]models.Post, 0, 105)
	for i := 0; i < 105; i++ {
		posts = append(posts, models.Post{
			AuthorID: author.ID,
			PostType: models.PostTypeNews,
			Title:    fmt.Sprintf("Seeded news %d", i),
			Content:  strings.Repeat("n", 30),
		})
	}
	suite.Require().NoError(suite.db.CreateInBatches(posts, 50).Error)

	w, env := suite.request("GET", "/api/v1/news?limit=500", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var list struct {
		Items      []models.PostResponse `json:"items"`
		Pagination struct {
			PerPage    int               `json:"per_page"`
			TotalPages int               `json:"total_pages"`
			Links      map[string]string `json:"links"`
		} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &list))
	suite.Len(list.Items, models.MaxPageSize)
	suite.Equal(models.MaxPageSize, list.Pagination.PerPage)
	suite.Equal(2, list.Pagination.TotalPages)
	suite.Contains(list.Pagination.Links["next"], "page=2")
	suite.Contains(list.Pagination.Links["next"], "limit=100")

	w, env = suite.request("GET", list.Pagination.Links["next"], "", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Require().NoError(json.Unmarshal(env.Data, &list))
	suite.Len(list.Items, 5)
}

func (suite *IntegrationTestSuite) TestNewsRateLimit() {
	token := suite.becomeAuthor(suite.token)
	payload := models.PostRequest{Title: "Breaking news", Content: strings.Repeat("n", 30)}

	for i := 0; i < 3; i++ {
		w, _ := suite.request("POST", "/api/v1/news", token, payload)
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := suite.request("POST", "/api/v1/news", token, payload)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validationError", env.CodeType)

	var fields map[string][]string
	suite.NoError(json.Unmarshal(env.CodeMessage, &fields))
	suite.Contains(fields, models.NonFieldErrors)

	w, env = suite.request("GET", "/api/v1/profile/limits", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	var limits models.PostingLimits
	suite.NoError(json.Unmarshal(env.Data, &limits))
	suite.Equal(int64(3), limits.NewsCount)
	suite.Equal(3, limits.NewsLimit)
	suite.True(limits.IsAuthor)
}

func (suite *IntegrationTestSuite) TestShortArticleRejected() {
	token := suite.becomeAuthor(suite.token)

	w, env := suite.request("POST", "/api/v1/articles", token, models.PostRequest{
		Title:   "Tiny",
		Content: strings.Repeat("a", 49),
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	var fields map[string][]string
	suite.NoError(json.Unmarshal(env.CodeMessage, &fields))
	suite.Contains(fields, "title")
	suite.Contains(fields, "content")
}

func (suite *IntegrationTestSuite) TestSubscriptionFanOut() {
	admin := suite.adminToken()
	sport := suite.createCategory(admin, "Sport")

	w, env := suite.request("POST", fmt.Sprintf("/api/v1/categories/%d/subscribe", sport.ID), suite.token, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result models.SubscriptionResult
	suite.NoError(json.Unmarshal(env.Data, &result))
	suite.True(result.Subscribed)
	suite.True(result.Changed)

	w, env = suite.request("GET", "/api/v1/subscriptions", suite.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	var subs []models.Subscription
	suite.NoError(json.Unmarshal(env.Data, &subs))
	suite.Len(subs, 1)

	authorToken, _ := suite.register("writer", "writer@example.com")
	authorToken = suite.becomeAuthor(authorToken)

	w, _ = suite.request("POST", "/api/v1/articles", authorToken, models.PostRequest{
		Title:      "Match report",
		Content:    strings.Repeat("a", 60),
		Categories: []uint{sport.ID},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.Equal(1, suite.outbox.count())
	suite.Equal("test@example.com", suite.outbox.messages[0].To)
	suite.Equal("New article: Match report", suite.outbox.messages[0].Subject)

	w, env = suite.request("POST", fmt.Sprintf("/api/v1/categories/%d/unsubscribe", sport.ID), suite.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	w, env = suite.request("POST", fmt.Sprintf("/api/v1/categories/%d/unsubscribe", sport.ID), suite.token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.NoError(json.Unmarshal(env.Data, &result))
	suite.False(result.Changed)
	suite.Contains(result.Message, "already not subscribed")
}

func (suite *IntegrationTestSuite) TestCategoryManagementNeedsAdmin() {
	w, _ := suite.request("POST", "/api/v1/categories", suite.token, models.CreateCategoryRequest{Name: "Sport"})
	suite.Equal(http.StatusForbidden, w.Code)

	admin := suite.adminToken()
	suite.createCategory(admin, "Sport")

	w, _ = suite.request("POST", "/api/v1/categories", admin, models.CreateCategoryRequest{Name: "Sport"})
	suite.Equal(http.StatusConflict, w.Code)

	w, env := suite.request("GET", "/api/v1/categories", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	var categories []models.Category
	suite.NoError(json.Unmarshal(env.Data, &categories))
	suite.Len(categories, 1)
}

func (suite *IntegrationTestSuite) TestUpdateAndDeleteOwnPost() {
	token := suite.becomeAuthor(suite.token)
	w, env := suite.request("POST", "/api/v1/articles", token, models.PostRequest{
		Title:   "Draft title",
		Content: strings.Repeat("a", 60),
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var post models.PostResponse
	suite.NoError(json.Unmarshal(env.Data, &post))

	other, _ := suite.register("rival", "rival@example.com")
	other = suite.becomeAuthor(other)

	path := fmt.Sprintf("/api/v1/articles/%d", post.ID)
	w, _ = suite.request("PUT", path, other, models.PostRequest{Title: "Stolen title", Content: strings.Repeat("b", 60)})
	suite.Equal(http.StatusForbidden, w.Code)

	w, env = suite.request("PUT", path, token, models.PostRequest{Title: "Final title", Content: strings.Repeat("b", 60)})
	suite.Equal(http.StatusOK, w.Code)
	suite.NoError(json.Unmarshal(env.Data, &post))
	suite.Equal("Final title", post.Title)

	w, _ = suite.request("DELETE", path, token, nil)
	suite.Equal(http.StatusOK, w.Code)
	w, _ = suite.request("GET", path, "", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestComments() {
	token := suite.becomeAuthor(suite.token)
	w, env := suite.request("POST", "/api/v1/news", token, models.PostRequest{
		Title:   "Commentable",
		Content: strings.Repeat("n", 30),
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var post models.PostResponse
	suite.NoError(json.Unmarshal(env.Data, &post))

	reader, _ := suite.register("reader", "reader@example.com")
	path := fmt.Sprintf("/api/v1/posts/%d/comments", post.ID)

	w, _ = suite.request("POST", path, reader, models.CreateCommentRequest{Text: "плохой take"})
	suite.Equal(http.StatusCreated, w.Code)

	w, env = suite.request("GET", path, "", nil)
	suite.Equal(http.StatusOK, w.Code)
	var comments []models.Comment
	suite.NoError(json.Unmarshal(env.Data, &comments))
	suite.Require().Len(comments, 1)
	suite.Equal("п***** take", comments[0].Text)

	w, _ = suite.request("GET", "/api/v1/posts/999/comments", "", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
