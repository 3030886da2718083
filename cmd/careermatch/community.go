package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	postContent   string
	postImages    []string
	postImageURLs []string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the community feed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		posts, err := current.client.Feed(cmd.Context())
		if err != nil {
			return loginHint(err)
		}
		return current.printer.Feed(posts)
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments <postID>",
	Short: "Show the comments on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comments, err := current.client.Comments(cmd.Context(), args[0])
		if err != nil {
			return loginHint(err)
		}
		return current.printer.Comments(comments)
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish a community post",
	Long:  "Publish a post with text, images, or both. Local --image files are uploaded first.",
	RunE:  runPost,
}

var commentCmd = &cobra.Command{
	Use:   "comment <postID> <text>...",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args[1:], " ")
		if err := current.client.CreateComment(cmd.Context(), args[0], content); err != nil {
			return loginHint(err)
		}
		current.printer.Success("Comment added")
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <postID>",
	Short: "Like or unlike a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.client.LikePost(cmd.Context(), args[0]); err != nil {
			return loginHint(err)
		}
		current.printer.Success("Like toggled on post %s", args[0])
		return nil
	},
}

func init() {
	f := postCmd.Flags()
	f.StringVarP(&postContent, "content", "c", "", "Post text")
	f.StringArrayVar(&postImages, "image", nil, "Local image to upload and attach (repeatable)")
	f.StringArrayVar(&postImageURLs, "image-url", nil, "Already uploaded image URL to attach (repeatable)")

	rootCmd.AddCommand(feedCmd, commentsCmd, postCmd, commentCmd, likeCmd)
}

func runPost(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	urls := append([]string{}, postImageURLs...)

	for _, path := range postImages {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open image: %w", err)
		}
		url, err := current.client.UploadCommunityImage(ctx, filepath.Base(path), f)
		_ = f.Close()
		if err != nil {
			return loginHint(err)
		}
		current.log.Debug("image uploaded", "file", path, "url", url)
		urls = append(urls, url)
	}

	if err := current.client.CreatePost(ctx, postContent, urls); err != nil {
		return loginHint(err)
	}
	current.printer.Success("Post published")
	return nil
}
