package main

import (
	"context"
	"database/sql"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sod/pkg/comment"
	"sod/pkg/generator"
	"sod/pkg/interaction"
	"sod/pkg/logger"
	"sod/pkg/middleware"
	"sod/pkg/mongodb"
	"sod/pkg/poll"
	"sod/pkg/post"
	"sod/pkg/session"
)

type EnvConfig map[string]string

func init() {
	rand.Seed(time.Now().UnixNano())
}

func main() {
	var cfg EnvConfig = readDotenv()

	db, err := sql.Open("pgx", "postgresql://localhost/"+cfg["POSTGRES_DB"]+"?sslmode=disable")
	if err != nil {
		log.Printf("Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("unable to reach PostgreSQL: %v", err)
	}

	redisConn, err := redis.DialURL(cfg["REDIS_ADDR"])
	if err != nil {
		log.Fatalf("main: can't connect to Redis")
	}
	rateConn, err := redis.DialURL(cfg["REDIS_ADDR"])
	if err != nil {
		log.Fatalf("main: can't connect to Redis")
	}

	mongoCtx, mongoCtxCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer mongoCtxCancel()
	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg["MONGODB_URI"]))
	if err != nil {
		log.Fatalln("main: can't connect to MongoDB,", err)
	}
	if err := mongoClient.Ping(mongoCtx, nil); err != nil {
		log.Fatalln("main: unable to connect to MongoDB,", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(mongoCtx); err != nil {
			log.Fatalln("main: failed disconnecting from MongoDB, ", err)
		}
	}()

	sodDB := mongoClient.Database("sod")
	postsRepo := post.NewRepo(sodDB.Collection("posts"))
	commentsRepo := comment.NewRepo(sodDB.Collection("comments"))
	staticSource := post.NewStaticSource(staticPostsPath(cfg))
	merger := post.NewMerger(postsRepo, staticSource)
	interactionStore := interaction.NewStore(sodDB.Collection("interactions"), postsRepo, staticSource)
	sessionManager := session.NewManager(cfg["SECRET_KEY"], redisConn,
		mongodb.NewCollection(sodDB.Collection("sessions")))

	gemini, err := generator.NewGeminiModel(context.Background(), cfg["GEMINI_API_KEY"])
	if err != nil {
		log.Fatalln("main: can't create Gemini client,", err)
	}
	commentGenerator := generator.NewGenerator(gemini,
		generator.NewRedisLimiter(rateConn), postsRepo, commentsRepo)

	gate := poll.NewGate(cfg["TIMER_VISIBLE"] != "false")
	gate.OnEnd(func() {
		log.Println("main: countdown expired, API is read-only until the poll")
	})
	gate.Start(experimentDuration(cfg))
	defer gate.Stop()
	pollRepo := poll.NewRepo(db)

	sessionHandler := session.NewHandler(sessionManager)
	postHandler := post.NewPostHandler(postsRepo, merger)
	commentHandler := comment.NewCommentHandler(commentsRepo)
	interactionHandler := interaction.NewInteractionHandler(interactionStore)
	generateHandler := generator.NewGenerateHandler(commentGenerator)
	pollHandler := poll.NewPollHandler(gate, pollRepo)

	r := mux.NewRouter()

	// Generate fake content to have better UI experience
	// seed(postsRepo, commentsRepo)

	api := r.PathPrefix("/api").Subrouter()

	// Session
	api.HandleFunc("/session", sessionHandler.Ensure).Methods("POST")

	// Feed
	api.HandleFunc("/feed", postHandler.Feed).Methods("GET")
	api.HandleFunc("/feed/stream", postHandler.FeedStream).Methods("GET")
	api.HandleFunc("/posts", postHandler.Add).Methods("POST")
	api.HandleFunc("/post/{post_id}", postHandler.Get).Methods("GET")
	api.HandleFunc("/post/{post_id}", postHandler.Delete).Methods("DELETE")

	// Comments
	api.HandleFunc("/post/{post_id}/comments", commentHandler.List).Methods("GET")
	api.HandleFunc("/post/{post_id}/comments", commentHandler.Add).Methods("POST")
	api.HandleFunc("/post/{post_id}/comments/stream", commentHandler.Stream).Methods("GET")
	api.HandleFunc("/generate", generateHandler.Generate).Methods("POST")

	// Interactions
	api.HandleFunc("/interactions", interactionHandler.Get).Methods("GET")
	api.HandleFunc("/interaction/{post_id}", interactionHandler.Set).Methods("PUT")
	api.HandleFunc("/post/{post_id}/counts", interactionHandler.PostCounts).Methods("GET")

	// Countdown and poll
	api.HandleFunc("/timer", pollHandler.Timer).Methods("GET")
	api.HandleFunc("/poll", pollHandler.Submit).Methods("POST")
	api.HandleFunc("/poll/results", pollHandler.Results).Methods("GET")

	auth := middleware.NewAuthMiddleware(sessionManager)
	r.Use(auth.Middleware)

	gateMiddleware := middleware.NewGateMiddleware(gate)
	r.Use(gateMiddleware.Middleware)

	logMiddleware := middleware.NewLoggingMiddleware(logger.Run(cfg["LOG_LEVEL"]))
	r.Use(logMiddleware.SetupTracing)
	r.Use(logMiddleware.SetupLogging)
	r.Use(logMiddleware.AccessLog)

	// Template path is relative to the project root
	spa := spaHandler{staticPath: "template", indexPath: "index.html"}
	r.PathPrefix("/").Handler(spa)

	log.Println("Serving at http://localhost:8080/")
	log.Fatalln(http.ListenAndServe(":8080", r))
}

func readDotenv() EnvConfig {
	env, err := godotenv.Read()
	if err != nil {
		log.Fatal("failed reading .env file:", err)
	}
	return env
}

func staticPostsPath(cfg EnvConfig) string {
	if p := cfg["STATIC_POSTS"]; p != "" {
		return p
	}
	return "data/posts.json"
}

func experimentDuration(cfg EnvConfig) time.Duration {
	d, err := time.ParseDuration(cfg["EXPERIMENT_DURATION"])
	if err != nil || d <= 0 {
		return 3 * time.Minute
	}
	return d
}
