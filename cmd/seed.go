package main

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"

	"sod/pkg/comment"
	. "sod/pkg/common"
	"sod/pkg/post"
)

var f = faker.New()

func seed(postRepo *post.Repo, commentRepo *comment.Repo) {
	for i := 0; i <= 5; i++ {
		p := genPost()
		_, err := postRepo.Add(context.Background(), p)
		if err != nil {
			log.Fatalln("seed: can't add post:", err)
		}
		genComments(commentRepo, p.Id)
	}
}

func randStance() post.Stance {
	stances := []post.Stance{post.StancePro, post.StanceAgainst, post.StanceMixed}
	return stances[rand.Intn(len(stances))]
}

func genMedia() []post.MediaItem {
	if rand.Intn(2) == 0 {
		return nil
	}
	return []post.MediaItem{
		{
			URL:  f.Address().Faker.Internet().URL(),
			Kind: post.MediaImages,
		},
	}
}

func genAuthor() string {
	return "seed_" + strings.ToLower(f.Person().FirstName())
}

func genText() string {
	return f.Lorem().Paragraph(rand.Intn(3) + 2)
}

func genComments(commentRepo *comment.Repo, postId post.PostId) {
	n := rand.Intn(5)
	author := genAuthor()
	for i := 0; i <= n; i++ {
		_, err := commentRepo.Add(context.Background(), postId, author, genText())
		if err != nil {
			log.Fatalln("seed: can't add comment:", err)
		}
	}
}

func genPost() *post.Post {
	return &post.Post{
		Id:      post.PostId(RandStringRunes(12)),
		Kind:    post.KindOriginal,
		Author:  genAuthor(),
		Text:    genText(),
		Stance:  randStance(),
		Media:   genMedia(),
		Created: f.Time().Time(time.Now()),
	}
}
