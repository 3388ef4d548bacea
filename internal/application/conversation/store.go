// Package conversation 管理对话列表、当前对话身份与消息历史
package conversation

import (
	"context"
	"slices"
	"sync"
	"time"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
	"z-novel-workspace/internal/domain/service"
	"z-novel-workspace/pkg/logger"
	"z-novel-workspace/pkg/metrics"
)

// Greeting 新对话的开场消息
const Greeting = "你好！有什么可以帮助你的吗？"

// DefaultsProvider 发送时读取默认生成参数
type DefaultsProvider interface {
	ChatDefaults() entity.GenerationDefaults
	AssistantDefaults() entity.GenerationDefaults
}

// Ticket 一次发送开始时捕获的目标对话标识
// 仅当 generation 仍与存储一致时，结果才允许写回
type Ticket struct {
	conversationID *int64
	generation     uint64
	turn           uint64
}

// ConversationID 发送时的当前对话 ID，草稿对话为 nil
func (t Ticket) ConversationID() *int64 {
	return t.conversationID
}

// Turn 本次发送的序号
func (t Ticket) Turn() uint64 {
	return t.turn
}

// Snapshot 对话状态快照
type Snapshot struct {
	Conversations         []entity.Conversation `json:"conversations"`
	CurrentConversationID *int64                `json:"current_conversation_id"`
	Messages              []entity.Message      `json:"messages"`
}

type streamBuf struct {
	msgIdx int
	chunks map[int]string
}

// Store 对话存储
// 独占 conversations 与 currentMessages；网络调用期间不持锁
type Store struct {
	mu sync.Mutex

	repo     repository.ConversationRepository
	chat     service.ChatBackend
	defaults DefaultsProvider
	now      func() time.Time

	conversations []*entity.Conversation
	currentID     *int64
	messages      []entity.Message

	generation uint64
	turns      uint64
	streams    map[uint64]*streamBuf
}

// NewStore 创建对话存储，初始处于无对话状态
// defaults 可为 nil，此时不补全默认参数
func NewStore(repo repository.ConversationRepository, chat service.ChatBackend, defaults DefaultsProvider) *Store {
	return &Store{
		repo:     repo,
		chat:     chat,
		defaults: defaults,
		now:      time.Now,
		streams:  make(map[uint64]*streamBuf),
	}
}

// FetchConversations 从后端刷新对话列表
func (s *Store) FetchConversations(ctx context.Context) ([]entity.Conversation, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		logger.Error(ctx, "failed to fetch conversations", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = list
	return s.listLocked(), nil
}

// FetchConversationMessages 获取指定对话的消息，只保留 role 与 content
func (s *Store) FetchConversationMessages(ctx context.Context, id int64) ([]entity.Message, error) {
	msgs, err := s.repo.ListMessages(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to fetch conversation messages", err, "conversation_id", id)
		return nil, err
	}
	out := make([]entity.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, entity.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

// CreateNewConversation 创建仅存在于客户端的临时对话并置于列表首位
func (s *Store) CreateNewConversation(title string) entity.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := entity.NewTempConversation(title, s.now())
	// 同一毫秒内连续创建时保证临时 ID 不重复
	for s.findLocked(c.ID) >= 0 {
		c.ID++
	}
	s.conversations = append([]*entity.Conversation{c}, s.conversations...)
	return *c
}

// StartNewConversation 进入草稿对话，消息重置为开场白
func (s *Store) StartNewConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startNewLocked()
}

// LoadConversation 加载已持久化对话，丢弃未发送的草稿状态
// 加载失败时状态不变
func (s *Store) LoadConversation(ctx context.Context, id int64) error {
	msgs, err := s.FetchConversationMessages(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = msgs
	s.currentID = &id
	s.bumpLocked()
	logger.Debug(ctx, "conversation loaded", "conversation_id", id, "messages", len(msgs))
	return nil
}

// AddMessage 追加消息到当前对话
func (s *Store) AddMessage(msg entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// SetCurrentConversationID 切换当前对话身份，nil 表示草稿
func (s *Store) SetCurrentConversationID(id *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sameID(s.currentID, id) {
		return
	}
	s.currentID = cloneID(id)
	s.bumpLocked()
}

// CurrentConversationID 当前对话 ID
func (s *Store) CurrentConversationID() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneID(s.currentID)
}

// ClearCurrentMessages 清空当前消息
func (s *Store) ClearCurrentMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []entity.Message{}
	clear(s.streams)
}

// DeleteConversation 删除对话；删除的是当前对话时回到草稿状态
// 临时对话只在本地移除
func (s *Store) DeleteConversation(ctx context.Context, id int64) error {
	if !s.isTemp(id) {
		if err := s.repo.Delete(ctx, id); err != nil {
			logger.Error(ctx, "failed to delete conversation", err, "conversation_id", id)
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = slices.DeleteFunc(s.conversations, func(c *entity.Conversation) bool {
		return c.ID == id
	})
	if s.currentID != nil && *s.currentID == id {
		s.startNewLocked()
	}
	return nil
}

// RenameConversation 重命名对话
func (s *Store) RenameConversation(ctx context.Context, id int64, title string) error {
	if !s.isTemp(id) {
		if err := s.repo.Rename(ctx, id, title); err != nil {
			logger.Error(ctx, "failed to rename conversation", err, "conversation_id", id)
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.findLocked(id); i >= 0 {
		s.conversations[i].Title = title
		s.conversations[i].UpdatedAt = s.now()
	}
	return nil
}

// Ticket 捕获当前对话标识，用于校验异步结果是否过期
func (s *Store) Ticket() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticketLocked()
}

// IsCurrent 判断票据是否仍指向当前对话
func (s *Store) IsCurrent(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.generation == s.generation
}

// ApplyReply 将同步回复写回当前对话
// 票据过期时丢弃结果并返回 false
func (s *Store) ApplyReply(ctx context.Context, t Ticket, reply *ChatReply) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.generation != s.generation {
		metrics.ChatStaleResponses.Inc()
		logger.Warn(ctx, "discarding stale chat reply", "turn", t.turn)
		return false
	}

	s.messages = append(s.messages, entity.Message{Role: entity.RoleAssistant, Content: reply.Content})
	if reply.ConversationID != nil {
		s.promoteLocked(*reply.ConversationID, reply.Title)
	}
	return true
}

// AppendStreamChunk 将流式分片追加到本轮的助手消息
// 同一分片序号重复到达时只生效一次；票据过期时丢弃并返回 false
func (s *Store) AppendStreamChunk(ctx context.Context, t Ticket, index int, chunk string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.generation != s.generation {
		metrics.ChatStaleResponses.Inc()
		logger.Debug(ctx, "discarding stale stream chunk", "turn", t.turn, "index", index)
		return false
	}

	buf, ok := s.streams[t.turn]
	if !ok || buf.msgIdx >= len(s.messages) {
		s.messages = append(s.messages, entity.Message{Role: entity.RoleAssistant})
		buf = &streamBuf{msgIdx: len(s.messages) - 1, chunks: make(map[int]string)}
		s.streams[t.turn] = buf
	}
	if _, seen := buf.chunks[index]; seen {
		return true
	}
	buf.chunks[index] = chunk
	s.messages[buf.msgIdx].Content = joinChunks(buf.chunks)
	return true
}

// FinishStream 结束本轮流式写入，释放分片缓冲
func (s *Store) FinishStream(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.streams, t.turn)
}

// Messages 当前消息副本
func (s *Store) Messages() []entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// Snapshot 返回完整状态快照
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := slices.Clone(s.messages)
	if msgs == nil {
		msgs = []entity.Message{}
	}
	return Snapshot{
		Conversations:         s.listLocked(),
		CurrentConversationID: cloneID(s.currentID),
		Messages:              msgs,
	}
}

func (s *Store) ticketLocked() Ticket {
	s.turns++
	return Ticket{
		conversationID: cloneID(s.currentID),
		generation:     s.generation,
		turn:           s.turns,
	}
}

func (s *Store) startNewLocked() {
	s.currentID = nil
	s.messages = []entity.Message{{Role: entity.RoleAssistant, Content: Greeting}}
	s.bumpLocked()
}

// bumpLocked 当前对话身份变化，使所有在途票据失效
func (s *Store) bumpLocked() {
	s.generation++
	clear(s.streams)
}

// promoteLocked 后端分配了持久化 ID：草稿或临时对话转为已持久化对话
func (s *Store) promoteLocked(id int64, title string) {
	prev := s.currentID
	s.currentID = &id

	if i := s.findLocked(id); i >= 0 {
		s.conversations[i].IsTemp = false
		return
	}

	if prev != nil {
		if i := s.findLocked(*prev); i >= 0 && s.conversations[i].IsTemp {
			c := s.conversations[i]
			c.ID = id
			c.IsTemp = false
			if title != "" {
				c.Title = title
			}
			c.UpdatedAt = s.now()
			return
		}
	}

	now := s.now()
	if title == "" {
		title = entity.DefaultConversationTitle
	}
	c := &entity.Conversation{ID: id, Title: title, CreatedAt: now, UpdatedAt: now}
	s.conversations = append([]*entity.Conversation{c}, s.conversations...)
}

func (s *Store) findLocked(id int64) int {
	return slices.IndexFunc(s.conversations, func(c *entity.Conversation) bool { return c.ID == id })
}

func (s *Store) isTemp(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(id)
	return i >= 0 && s.conversations[i].IsTemp
}

func (s *Store) listLocked() []entity.Conversation {
	out := make([]entity.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, *c)
	}
	return out
}

func joinChunks(chunks map[int]string) string {
	keys := make([]int, 0, len(chunks))
	for k := range chunks {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var n int
	for _, k := range keys {
		n += len(chunks[k])
	}
	b := make([]byte, 0, n)
	for _, k := range keys {
		b = append(b, chunks[k]...)
	}
	return string(b)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
