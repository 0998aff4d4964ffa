package handlers

import (
	"net/url"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/forms"
	"github.com/yatube/yatube/internal/metrics"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/services"
	"github.com/yatube/yatube/pkg/logger"
)

type PostsHandler struct {
	Posts  *services.PostService
	Groups *services.GroupService
	Access *services.AccessService
}

func NewPostsHandler(posts *services.PostService, groups *services.GroupService, access *services.AccessService) *PostsHandler {
	return &PostsHandler{Posts: posts, Groups: groups, Access: access}
}

func (h *PostsHandler) Index(c *fiber.Ctx) error {
	page, err := h.Posts.Index(c.UserContext(), c.Query("page"))
	if err != nil {
		return err
	}

	return render(c, "posts/index", fiber.Map{
		"title": "Latest updates",
		"page":  page,
	})
}

func (h *PostsHandler) GroupPosts(c *fiber.Ctx) error {
	group, page, err := h.Posts.GroupFeed(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return lookupError(err)
	}

	return render(c, "posts/group_list", fiber.Map{
		"title": group.Title,
		"group": group,
		"page":  page,
	})
}

func (h *PostsHandler) Profile(c *fiber.Ctx) error {
	author, page, err := h.Posts.ProfileFeed(c.UserContext(), c.Params("username"), c.Query("page"))
	if err != nil {
		return lookupError(err)
	}

	return render(c, "posts/profile", fiber.Map{
		"title":       "Profile of " + author.FullName(),
		"author":      author,
		"page":        page,
		"posts_count": page.Total,
	})
}

func (h *PostsHandler) Detail(c *fiber.Ctx) error {
	post, err := h.Posts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return lookupError(err)
	}

	count, err := h.Posts.CountByAuthor(c.UserContext(), post.AuthorID)
	if err != nil {
		return err
	}

	return render(c, "posts/post_detail", fiber.Map{
		"title":       "Post " + post.Label(),
		"post":        post,
		"posts_count": count,
		"can_edit":    h.Access.CanEditPost(middleware.GetCurrentUser(c), post),
	})
}

func (h *PostsHandler) Create(c *fiber.Ctx) error {
	actor := middleware.GetCurrentUser(c)
	if actor == nil {
		return c.Redirect(middleware.LoginURL(c.OriginalURL()), fiber.StatusFound)
	}

	if c.Method() != fiber.MethodPost {
		return h.renderForm(c, forms.NewPostForm(nil), nil)
	}

	form, err := forms.BindPostForm(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form submission")
	}

	valid, err := form.Validate(c.UserContext(), h.Groups)
	if err != nil {
		return err
	}
	if !valid {
		metrics.ValidationFailed("create")
		logger.InfoWithUser(actor.ID.String(), "post_validation_failed", map[string]interface{}{
			"form":   "create",
			"fields": fieldNames(form.Errors),
		})
		return h.renderForm(c, form, nil)
	}

	post, err := h.Posts.Create(c.UserContext(), actor, form)
	if err != nil {
		return err
	}

	metrics.PostCreated()
	logger.InfoWithUser(actor.ID.String(), "post_created", map[string]interface{}{
		"post_id":  post.ID.String(),
		"group_id": groupIDString(post),
	})

	return c.Redirect(profilePath(actor.Username), fiber.StatusFound)
}

func (h *PostsHandler) Edit(c *fiber.Ctx) error {
	actor := middleware.GetCurrentUser(c)
	if actor == nil {
		return c.Redirect(middleware.LoginURL(c.OriginalURL()), fiber.StatusFound)
	}

	post, err := h.Posts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return lookupError(err)
	}

	if !h.Access.CanEditPost(actor, post) {
		return c.Redirect(detailPath(post), fiber.StatusFound)
	}

	if c.Method() != fiber.MethodPost {
		return h.renderForm(c, forms.NewPostForm(post), post)
	}

	form, err := forms.BindPostForm(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form submission")
	}

	valid, err := form.Validate(c.UserContext(), h.Groups)
	if err != nil {
		return err
	}
	if !valid {
		metrics.ValidationFailed("edit")
		logger.InfoWithUser(actor.ID.String(), "post_validation_failed", map[string]interface{}{
			"form":    "edit",
			"post_id": post.ID.String(),
			"fields":  fieldNames(form.Errors),
		})
		return h.renderForm(c, form, post)
	}

	previousAuthor := post.AuthorID
	if err := h.Posts.Update(c.UserContext(), actor, post, form); err != nil {
		return err
	}

	metrics.PostUpdated()
	logger.InfoWithUser(actor.ID.String(), "post_updated", map[string]interface{}{
		"post_id":         post.ID.String(),
		"group_id":        groupIDString(post),
		"previous_author": previousAuthor.String(),
	})

	return c.Redirect(detailPath(post), fiber.StatusFound)
}

// renderForm shows the post form; post is nil when creating.
func (h *PostsHandler) renderForm(c *fiber.Ctx, form *forms.PostForm, post *models.Post) error {
	groups, err := h.Groups.List(c.UserContext())
	if err != nil {
		return err
	}

	data := fiber.Map{
		"title":   "New post",
		"form":    form,
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		data["title"] = "Edit post"
		data["post"] = post
	}
	return render(c, "posts/create_post", data)
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func detailPath(post *models.Post) string {
	return "/posts/" + post.ID.String() + "/"
}

func groupIDString(post *models.Post) string {
	if post.GroupID == nil {
		return ""
	}
	return post.GroupID.String()
}

func fieldNames(errs map[string]string) []string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
