package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gomodule/redigo/redis"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	. "sod/pkg/common"
	"sod/pkg/logger"
	"sod/pkg/mongodb"
)

const expField = "exp"

type (
	sessionKey string

	Manager struct {
		secret   []byte
		redis    redis.Conn
		sessions mongodb.IMongoCollection
	}

	jwtClaims struct {
		SessionId string `json:"sessionId"`
		Variant   string `json:"variant"`
		jwt.StandardClaims
	}
)

const SessionKey sessionKey = "authenticatedSession"

var ErrNoAuth = errors.New("session: no session found")

func NewManager(secret string, conn redis.Conn, sessions mongodb.IMongoCollection) *Manager {
	return &Manager{
		secret:   []byte(secret),
		redis:    conn,
		sessions: sessions,
	}
}

// Ensure establishes an anonymous session. Calling it again with the
// session already resolved is idempotent: the same session comes back,
// the variant is never reassigned, and only startedAt/userAgent are
// merge-written. A fresh call assigns a variant (the requested one if
// valid, a random one otherwise) and issues a bearer token.
func (m *Manager) Ensure(ctx context.Context, current *Session, requested Variant, userAgent string) (*Session, string, error) {
	now := time.Now()

	if current != nil {
		stored := new(Session)
		err := m.sessions.FindOne(ctx, bson.M{"_id": current.Id}).Decode(stored)
		if err != nil {
			// The record may not exist yet (token issued, write lost);
			// fall back to the variant carried in the token.
			logger.Log(ctx).Infof("session/manager: no stored record for %s: %v", current.Id, err)
			stored = current
		}
		if err := m.upsert(ctx, current.Id, bson.M{
			"startedAt": now,
			"userAgent": userAgent,
		}); err != nil {
			return nil, ``, err
		}
		current.Variant = stored.Variant
		return current, ``, nil
	}

	variant := requested
	if !variant.Valid() {
		variant = ChooseVariant()
	}
	s := &Session{
		Id:         RandStringRunes(20),
		Variant:    variant,
		AssignedAt: now,
		StartedAt:  now,
		UserAgent:  userAgent,
	}
	if err := m.upsert(ctx, s.Id, bson.M{
		"variant":    s.Variant,
		"assignedAt": s.AssignedAt,
		"startedAt":  s.StartedAt,
		"userAgent":  s.UserAgent,
	}); err != nil {
		return nil, ``, err
	}

	token, err := m.CreateToken(s)
	if err != nil {
		return nil, ``, err
	}
	return s, token, nil
}

// Merge-write: fields absent from the update are preserved.
func (m *Manager) upsert(ctx context.Context, id string, fields bson.M) error {
	_, err := m.sessions.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("session/manager: failed upserting session record: %w", err)
	}
	return nil
}

// Returns the session if the JWT token is valid and the session is
// still registered.
func (m *Manager) SessionFromToken(authHeader string) (*Session, error) {
	if authHeader == "" {
		return nil, errors.New("session: auth header not found")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(m.secret), nil
		})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok {
		return nil, errors.New("session: can't cast token to claim")
	}
	if !token.Valid {
		return nil, errors.New("session: token is not valid")
	}

	_, redisErr := m.CheckRedis(claims.SessionId)
	if redisErr != nil {
		return nil, fmt.Errorf("session/manager: Redis session is not valid: %v", redisErr)
	}

	return &Session{Id: claims.SessionId, Variant: Variant(claims.Variant)}, nil
}

func (m *Manager) CheckRedis(sessionId string) (bool, error) {
	expirationData, err := redis.Bytes(m.redis.Do("HGET", sessionId, expField))
	if err != nil {
		log.Println("session/manager: can't HGET from Redis:", err)
		return false, err
	}

	// Check the session for expiration
	expiredTs, _ := strconv.ParseInt(string(expirationData), 10, 64)
	nowTs := time.Now().Unix()
	if nowTs > expiredTs {
		return false, errors.New("session has been expired")
	}

	// Prolongate session expiration time if it expires in less than 24 hours
	// because we don't want to kick off the active visitor.
	if expiredTs-nowTs < int64(time.Duration(24*time.Hour).Seconds()) {
		newExpDate := time.Now().Add(90 * 24 * time.Hour).Unix()
		err := m.AddToRedis(sessionId, newExpDate)
		if err != nil {
			log.Println("session/manager: failed add to Redis", err)
			return false, err
		}
	}

	return true, nil
}

func (m *Manager) AddToRedis(sessionId string, exp int64) error {
	_, err := m.redis.Do("HSET", sessionId, expField, exp)
	if err != nil {
		return fmt.Errorf("session/manager: failed HSET to Redis: %v", err)
	}
	return nil
}

func (m *Manager) CreateToken(s *Session) (string, error) {
	data := jwtClaims{
		SessionId: s.Id,
		Variant:   string(s.Variant),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(90 * 24 * time.Hour).Unix(), // 90 days
			IssuedAt:  time.Now().Unix(),
			Id:        RandStringRunes(10),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, data).SignedString(m.secret)
	if err != nil {
		return "", err
	}

	redisErr := m.AddToRedis(s.Id, data.ExpiresAt)
	if redisErr != nil {
		log.Println("session/manager: failed add to redis", redisErr)
		return ``, redisErr
	}

	return token, nil
}

func GetAuthSession(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(SessionKey).(*Session)
	if !ok || s == nil {
		return nil, ErrNoAuth
	}
	return s, nil
}
