package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"quiz_game_backend/internal/model"
	"quiz_game_backend/internal/repository"
	"quiz_game_backend/internal/util"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// fakeStore 内存实现，镜像 GameRepository 的语义：点查询不存在返回 (nil, nil)，
// CloseSession / MarkLuckyDrawShown 带状态过滤
type fakeStore struct {
	quizzes   map[string]*model.Quiz
	questions []*model.Question
	progress  map[string]*model.UserQuizProgress
	sessions  map[string]*model.QuizSession
	answers   []*model.Answer
	seq       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quizzes:  make(map[string]*model.Quiz),
		progress: make(map[string]*model.UserQuizProgress),
		sessions: make(map[string]*model.QuizSession),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) GetQuiz(id string) (*model.Quiz, error) {
	return f.quizzes[id], nil
}

func (f *fakeStore) GetQuestion(id string) (*model.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListUnansweredQuestions(quizID, userID string) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.QuizID != quizID {
			continue
		}
		answered := false
		for _, a := range f.answers {
			if a.UserID == userID && a.QuestionID == q.ID {
				answered = true
				break
			}
		}
		if !answered {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProgress(userID, quizID string) (*model.UserQuizProgress, error) {
	for _, p := range f.progress {
		if p.UserID == userID && p.QuizID == quizID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateProgress(p *model.UserQuizProgress) error {
	if p.ID == "" {
		p.ID = f.nextID("progress")
	}
	f.progress[p.ID] = p
	return nil
}

func (f *fakeStore) AdvanceProgress(id string, currentRound int, isCompleted bool, answeredDelta int, at time.Time) error {
	p, ok := f.progress[id]
	if !ok {
		return nil
	}
	if currentRound > p.CurrentRound {
		p.CurrentRound = currentRound
	}
	p.IsCompleted = p.IsCompleted || isCompleted
	p.TotalQuestionsAnswered += answeredDelta
	p.LastAttemptDate = &at
	return nil
}

func (f *fakeStore) TouchProgress(id string, at time.Time) error {
	if p, ok := f.progress[id]; ok {
		p.LastAttemptDate = &at
	}
	return nil
}

func (f *fakeStore) IncrementLuckyDrawBadges(userID, quizID string) error {
	for _, p := range f.progress {
		if p.UserID == userID && p.QuizID == quizID {
			p.LuckyDrawBadges++
		}
	}
	return nil
}

func (f *fakeStore) GetSession(id string) (*model.QuizSession, error) {
	return f.sessions[id], nil
}

func (f *fakeStore) CreateSession(s *model.QuizSession) error {
	if s.ID == "" {
		s.ID = f.nextID("session")
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) MarkLuckyDrawShown(sessionID string) error {
	if s, ok := f.sessions[sessionID]; ok && !s.LuckyDrawShown {
		s.LuckyDrawShown = true
	}
	return nil
}

func (f *fakeStore) CloseSession(sessionID string, status model.SessionStatus, at time.Time) error {
	if s, ok := f.sessions[sessionID]; ok && s.Status == model.SessionInProgress {
		s.Status = status
		s.CompletedAt = &at
	}
	return nil
}

func (f *fakeStore) IncrementSessionCounters(sessionID string, firstTryCorrect bool) error {
	if s, ok := f.sessions[sessionID]; ok {
		s.QuestionsCount++
		if firstTryCorrect {
			s.CorrectFirstTry++
		}
	}
	return nil
}

func (f *fakeStore) GetAnswer(sessionID, questionID string) (*model.Answer, error) {
	for _, a := range f.answers {
		if a.SessionID == sessionID && a.QuestionID == questionID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateAnswer(a *model.Answer) error {
	if a.ID == "" {
		a.ID = f.nextID("answer")
	}
	f.answers = append(f.answers, a)
	return nil
}

func (f *fakeStore) UpdateAnswerAttempt(id string, userAnswer json.RawMessage, isCorrect bool, attemptCount int) error {
	for _, a := range f.answers {
		if a.ID == id {
			a.UserAnswer = userAnswer
			a.IsCorrect = isCorrect
			a.AttemptCount = attemptCount
		}
	}
	return nil
}

func (f *fakeStore) InTx(fn func(tx repository.GameStore) error) error {
	return fn(f)
}

// scriptedRand 按预置序列返回，Shuffle 保持原顺序
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Shuffle(n int, swap func(i, j int)) {}

func newTestService(store *fakeStore, rnd Rand) *GameService {
	if rnd == nil {
		rnd = &scriptedRand{}
	}
	svc := NewGameService(store, rnd)
	svc.Now = func() time.Time { return testNow }
	return svc
}

func seedQuiz(f *fakeStore, id string, maxRounds, perRound int) *model.Quiz {
	quiz := &model.Quiz{
		Title:             "产品知识问答 " + id,
		StartDate:         testNow.Add(-24 * time.Hour),
		EndDate:           testNow.Add(24 * time.Hour),
		IsActive:          true,
		MaxRounds:         maxRounds,
		QuestionsPerRound: perRound,
	}
	quiz.ID = id
	f.quizzes[id] = quiz
	return quiz
}

func seedQuestion(f *fakeStore, id, quizID string, luckyDraw bool, correct string) *model.Question {
	q := &model.Question{
		QuizID:        quizID,
		Type:          model.FillBlank,
		Content:       "题目 " + id,
		CorrectAnswer: json.RawMessage(correct),
		Explanation:   "解析 " + id,
		IsLuckyDraw:   luckyDraw,
	}
	q.ID = id
	f.questions = append(f.questions, q)
	return q
}

func seedSession(f *fakeStore, id, userID, quizID string, round int) *model.QuizSession {
	s := &model.QuizSession{
		UserID:      userID,
		QuizID:      quizID,
		RoundNumber: round,
		Status:      model.SessionInProgress,
		StartedAt:   testNow,
	}
	s.ID = id
	f.sessions[id] = s
	return s
}

func TestCreateSessionFirstRound(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	svc := newTestService(store, nil)

	session, err := svc.CreateSession("user1", "quiz1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.RoundNumber != 1 {
		t.Errorf("round = %d, want 1", session.RoundNumber)
	}
	if session.Status != model.SessionInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", session.Status)
	}

	progress, _ := store.GetProgress("user1", "quiz1")
	if progress == nil {
		t.Fatal("progress not created")
	}
	if progress.CurrentRound != 0 {
		t.Errorf("currentRound = %d, want 0", progress.CurrentRound)
	}
	if progress.FirstAttemptDate == nil || !progress.FirstAttemptDate.Equal(testNow) {
		t.Errorf("firstAttemptDate = %v, want %v", progress.FirstAttemptDate, testNow)
	}
}

func TestCreateSessionResumesExistingProgress(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	first := testNow.Add(-48 * time.Hour)
	store.CreateProgress(&model.UserQuizProgress{
		UserID:           "user1",
		QuizID:           "quiz1",
		CurrentRound:     1,
		FirstAttemptDate: &first,
	})
	svc := newTestService(store, nil)

	session, err := svc.CreateSession("user1", "quiz1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.RoundNumber != 2 {
		t.Errorf("round = %d, want 2", session.RoundNumber)
	}
	if len(store.progress) != 1 {
		t.Errorf("progress rows = %d, want 1", len(store.progress))
	}
}

func TestCreateSessionQuizNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	if _, err := svc.CreateSession("user1", "missing"); err != util.ErrQuizNotFound {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
}

func TestCreateSessionQuizWindow(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	notStarted := seedQuiz(store, "future", 3, 5)
	notStarted.StartDate = testNow.Add(time.Hour)
	if _, err := svc.CreateSession("user1", "future"); err != util.ErrQuizNotAvailable {
		t.Errorf("not started: err = %v, want ErrQuizNotAvailable", err)
	}

	// 结束时刻按左闭右开处理，now == endDate 已经过期
	ended := seedQuiz(store, "ended", 3, 5)
	ended.EndDate = testNow
	if _, err := svc.CreateSession("user1", "ended"); err != util.ErrQuizNotAvailable {
		t.Errorf("ended: err = %v, want ErrQuizNotAvailable", err)
	}

	// now == startDate 恰好开始
	opening := seedQuiz(store, "opening", 3, 5)
	opening.StartDate = testNow
	if _, err := svc.CreateSession("user1", "opening"); err != nil {
		t.Errorf("opening: err = %v, want nil", err)
	}

	inactive := seedQuiz(store, "inactive", 3, 5)
	inactive.IsActive = false
	if _, err := svc.CreateSession("user1", "inactive"); err != util.ErrQuizNotAvailable {
		t.Errorf("inactive: err = %v, want ErrQuizNotAvailable", err)
	}
}

func TestCreateSessionCompletedProgress(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	store.CreateProgress(&model.UserQuizProgress{
		UserID:       "user1",
		QuizID:       "quiz1",
		CurrentRound: 3,
		IsCompleted:  true,
	})
	svc := newTestService(store, nil)

	if _, err := svc.CreateSession("user1", "quiz1"); err != util.ErrQuizAlreadyCompleted {
		t.Fatalf("err = %v, want ErrQuizAlreadyCompleted", err)
	}
}

func TestCreateSessionMaxRoundsReached(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	store.CreateProgress(&model.UserQuizProgress{
		UserID:       "user1",
		QuizID:       "quiz1",
		CurrentRound: 3,
	})
	svc := newTestService(store, nil)

	if _, err := svc.CreateSession("user1", "quiz1"); err != util.ErrMaxRoundsReached {
		t.Fatalf("err = %v, want ErrMaxRoundsReached", err)
	}
}

func TestSessionQuestionsFillsRound(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	for i := 0; i < 10; i++ {
		seedQuestion(store, fmt.Sprintf("q%d", i), "quiz1", false, `"answer"`)
	}
	seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	result, err := svc.SessionQuestions("user1", "s1")
	if err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}
	if len(result.Questions) != 5 {
		t.Fatalf("questions = %d, want 5", len(result.Questions))
	}
	if result.CurrentQuestionIndex != 0 {
		t.Errorf("currentQuestionIndex = %d, want 0", result.CurrentQuestionIndex)
	}
}

func TestSessionQuestionsShortPool(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "q1", "quiz1", false, `"a"`)
	seedQuestion(store, "q2", "quiz1", false, `"b"`)
	seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	result, err := svc.SessionQuestions("user1", "s1")
	if err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(result.Questions))
	}
}

func TestSessionQuestionsExcludesAnswered(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "q1", "quiz1", false, `"a"`)
	seedQuestion(store, "q2", "quiz1", false, `"b"`)
	// q1 已在上一回合答过
	store.CreateAnswer(&model.Answer{UserID: "user1", SessionID: "s0", QuestionID: "q1", UserAnswer: json.RawMessage(`"a"`)})
	seedSession(store, "s1", "user1", "quiz1", 2)
	svc := newTestService(store, nil)

	result, err := svc.SessionQuestions("user1", "s1")
	if err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}
	if len(result.Questions) != 1 || result.Questions[0].ID != "q2" {
		t.Fatalf("questions = %+v, want only q2", result.Questions)
	}
}

func TestSessionQuestionsLuckyDrawHit(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	for i := 0; i < 6; i++ {
		seedQuestion(store, fmt.Sprintf("q%d", i), "quiz1", false, `"a"`)
	}
	seedQuestion(store, "lucky1", "quiz1", true, `"a"`)
	session := seedSession(store, "s1", "user1", "quiz1", 2)
	session.CorrectFirstTry = 3

	// 第2回合概率 0.2，0.19 < 0.2 命中
	rnd := &scriptedRand{floats: []float64{0.19}, ints: []int{0}}
	svc := newTestService(store, rnd)

	result, err := svc.SessionQuestions("user1", "s1")
	if err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}
	if len(result.Questions) != 5 {
		t.Fatalf("questions = %d, want 5", len(result.Questions))
	}
	if !result.Questions[0].IsLuckyDraw || result.Questions[0].ID != "lucky1" {
		t.Errorf("first question = %+v, want lucky1", result.Questions[0])
	}
	for _, q := range result.Questions[1:] {
		if q.IsLuckyDraw {
			t.Errorf("unexpected extra lucky draw question %s", q.ID)
		}
	}
	if !session.LuckyDrawShown {
		t.Error("luckyDrawShown not marked")
	}
}

func TestSessionQuestionsLuckyDrawMiss(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	for i := 0; i < 6; i++ {
		seedQuestion(store, fmt.Sprintf("q%d", i), "quiz1", false, `"a"`)
	}
	seedQuestion(store, "lucky1", "quiz1", true, `"a"`)
	session := seedSession(store, "s1", "user1", "quiz1", 2)
	session.CorrectFirstTry = 3

	rnd := &scriptedRand{floats: []float64{0.95}}
	svc := newTestService(store, rnd)

	result, err := svc.SessionQuestions("user1", "s1")
	if err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}
	for _, q := range result.Questions {
		if q.IsLuckyDraw {
			t.Errorf("unexpected lucky draw question %s", q.ID)
		}
	}
	// 未命中不消耗"本会话唯一一次"机会
	if session.LuckyDrawShown {
		t.Error("luckyDrawShown marked on miss")
	}
}

func TestSessionQuestionsLuckyDrawRequirements(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	for i := 0; i < 6; i++ {
		seedQuestion(store, fmt.Sprintf("q%d", i), "quiz1", false, `"a"`)
	}
	seedQuestion(store, "lucky1", "quiz1", true, `"a"`)
	svc := newTestService(store, nil) // 空随机序列，抽取被触发会越界 panic

	// 首答正确数不足
	low := seedSession(store, "s1", "user1", "quiz1", 2)
	low.CorrectFirstTry = 2
	if _, err := svc.SessionQuestions("user1", "s1"); err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}

	// 本会话已出过幸运题
	shown := seedSession(store, "s2", "user1", "quiz1", 2)
	shown.CorrectFirstTry = 5
	shown.LuckyDrawShown = true
	if _, err := svc.SessionQuestions("user1", "s2"); err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}
}

func TestSessionQuestionsRoundTenAlwaysHits(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 12, 5)
	seedQuestion(store, "lucky1", "quiz1", true, `"a"`)
	session := seedSession(store, "s1", "user1", "quiz1", 10)
	session.CorrectFirstTry = 3

	// Float64 返回 [0,1)，回合 >= 10 时概率 >= 1.0 必中
	rnd := &scriptedRand{floats: []float64{0.999999}, ints: []int{0}}
	svc := newTestService(store, rnd)

	result, err := svc.SessionQuestions("user1", "s1")
	if err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}
	if len(result.Questions) != 1 || !result.Questions[0].IsLuckyDraw {
		t.Fatalf("questions = %+v, want lucky draw question", result.Questions)
	}
}

func TestSessionQuestionsViewOmitsAnswer(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "q1", "quiz1", false, `"secret"`)
	seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	result, err := svc.SessionQuestions("user1", "s1")
	if err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}
	data, err := json.Marshal(result.Questions[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("question view leaks correct answer: %s", data)
	}
}

func TestSessionQuestionsOwnership(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	// 他人的会话与不存在的会话同样返回未找到
	if _, err := svc.SessionQuestions("user2", "s1"); err != util.ErrSessionNotFound {
		t.Errorf("foreign session: err = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.SessionQuestions("user1", "missing"); err != util.ErrSessionNotFound {
		t.Errorf("missing session: err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionQuestionsClosedSession(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	session := seedSession(store, "s1", "user1", "quiz1", 1)
	session.Status = model.SessionCompleted
	svc := newTestService(store, nil)

	if _, err := svc.SessionQuestions("user1", "s1"); err != util.ErrSessionNotInProgress {
		t.Fatalf("err = %v, want ErrSessionNotInProgress", err)
	}
}

func TestSubmitAnswerFirstTryCorrect(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "q1", "quiz1", false, `"seoul"`)
	session := seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	result, err := svc.SubmitAnswer("user1", "s1", "q1", json.RawMessage(`"seoul"`))
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !result.IsCorrect || !result.CanProceed {
		t.Errorf("result = %+v, want correct and canProceed", result)
	}
	if result.AttemptCount != 1 {
		t.Errorf("attemptCount = %d, want 1", result.AttemptCount)
	}
	if result.CorrectAnswer != nil {
		t.Errorf("correctAnswer leaked on correct submit: %s", result.CorrectAnswer)
	}
	if session.QuestionsCount != 1 || session.CorrectFirstTry != 1 {
		t.Errorf("counters = (%d, %d), want (1, 1)", session.QuestionsCount, session.CorrectFirstTry)
	}

	answer, _ := store.GetAnswer("s1", "q1")
	if answer == nil || !answer.IsFirstTryCorrect {
		t.Fatalf("answer = %+v, want isFirstTryCorrect", answer)
	}
}

func TestSubmitAnswerWrongThenRetry(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "q1", "quiz1", false, `"seoul"`)
	session := seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	result, err := svc.SubmitAnswer("user1", "s1", "q1", json.RawMessage(`"busan"`))
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if result.IsCorrect || result.CanProceed {
		t.Errorf("result = %+v, want incorrect", result)
	}
	if string(result.CorrectAnswer) != `"seoul"` {
		t.Errorf("correctAnswer = %s, want \"seoul\"", result.CorrectAnswer)
	}
	if session.QuestionsCount != 1 || session.CorrectFirstTry != 0 {
		t.Errorf("counters = (%d, %d), want (1, 0)", session.QuestionsCount, session.CorrectFirstTry)
	}

	// 再答错一次，再答对：只更新记录，计数器不动，isFirstTryCorrect 保持 false
	result, err = svc.SubmitAnswer("user1", "s1", "q1", json.RawMessage(`"daegu"`))
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if result.IsCorrect || result.AttemptCount != 2 {
		t.Errorf("second attempt result = %+v, want incorrect attempt 2", result)
	}

	result, err = svc.SubmitAnswer("user1", "s1", "q1", json.RawMessage(`"seoul"`))
	if err != nil {
		t.Fatalf("third attempt: %v", err)
	}
	if !result.IsCorrect || result.AttemptCount != 3 {
		t.Errorf("third attempt result = %+v, want correct attempt 3", result)
	}
	if session.QuestionsCount != 1 || session.CorrectFirstTry != 0 {
		t.Errorf("counters after retries = (%d, %d), want (1, 0)", session.QuestionsCount, session.CorrectFirstTry)
	}

	answer, _ := store.GetAnswer("s1", "q1")
	if answer.IsFirstTryCorrect {
		t.Error("isFirstTryCorrect flipped on retry")
	}
	if !answer.IsCorrect || answer.AttemptCount != 3 {
		t.Errorf("answer = %+v, want correct attempt 3", answer)
	}
	if len(store.answers) != 1 {
		t.Errorf("answer rows = %d, want 1", len(store.answers))
	}
}

func TestSubmitAnswerRepeatCorrectIdempotent(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "q1", "quiz1", false, `"seoul"`)
	session := seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	if _, err := svc.SubmitAnswer("user1", "s1", "q1", json.RawMessage(`"seoul"`)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	result, err := svc.SubmitAnswer("user1", "s1", "q1", json.RawMessage(`"seoul"`))
	if err != nil {
		t.Fatalf("repeat submit: %v", err)
	}
	if !result.IsCorrect {
		t.Error("repeat correct submit reported incorrect")
	}
	if session.QuestionsCount != 1 || session.CorrectFirstTry != 1 {
		t.Errorf("counters = (%d, %d), want (1, 1)", session.QuestionsCount, session.CorrectFirstTry)
	}
	if len(store.answers) != 1 {
		t.Errorf("answer rows = %d, want 1", len(store.answers))
	}
}

func TestSubmitAnswerLuckyDrawBadge(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "lucky1", "quiz1", true, `true`)
	seedSession(store, "s1", "user1", "quiz1", 1)
	store.CreateProgress(&model.UserQuizProgress{UserID: "user1", QuizID: "quiz1"})
	svc := newTestService(store, nil)

	if _, err := svc.SubmitAnswer("user1", "s1", "lucky1", json.RawMessage(`true`)); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	progress, _ := store.GetProgress("user1", "quiz1")
	if progress.LuckyDrawBadges != 1 {
		t.Errorf("luckyDrawBadges = %d, want 1", progress.LuckyDrawBadges)
	}
}

func TestSubmitAnswerLuckyDrawNoBadgeOnRetry(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "lucky1", "quiz1", true, `true`)
	seedSession(store, "s1", "user1", "quiz1", 1)
	store.CreateProgress(&model.UserQuizProgress{UserID: "user1", QuizID: "quiz1"})
	svc := newTestService(store, nil)

	// 首答错，重试答对不发徽章
	if _, err := svc.SubmitAnswer("user1", "s1", "lucky1", json.RawMessage(`false`)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.SubmitAnswer("user1", "s1", "lucky1", json.RawMessage(`true`)); err != nil {
		t.Fatalf("retry: %v", err)
	}
	progress, _ := store.GetProgress("user1", "quiz1")
	if progress.LuckyDrawBadges != 0 {
		t.Errorf("luckyDrawBadges = %d, want 0", progress.LuckyDrawBadges)
	}
}

func TestSubmitAnswerInvalidPayload(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "q1", "quiz1", false, `"a"`)
	seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	for _, payload := range []json.RawMessage{nil, json.RawMessage(``), json.RawMessage(`{invalid`)} {
		if _, err := svc.SubmitAnswer("user1", "s1", "q1", payload); err != util.ErrInvalidAnswerPayload {
			t.Errorf("payload %q: err = %v, want ErrInvalidAnswerPayload", payload, err)
		}
	}
	if len(store.answers) != 0 {
		t.Errorf("answer rows = %d, want 0", len(store.answers))
	}
}

func TestSubmitAnswerQuestionChecks(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuiz(store, "quiz2", 3, 5)
	seedQuestion(store, "other", "quiz2", false, `"a"`)
	seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	// 其他活动的题目与不存在的题目一视同仁
	if _, err := svc.SubmitAnswer("user1", "s1", "other", json.RawMessage(`"a"`)); err != util.ErrQuestionNotFound {
		t.Errorf("cross-quiz question: err = %v, want ErrQuestionNotFound", err)
	}
	if _, err := svc.SubmitAnswer("user1", "s1", "missing", json.RawMessage(`"a"`)); err != util.ErrQuestionNotFound {
		t.Errorf("missing question: err = %v, want ErrQuestionNotFound", err)
	}
}

func TestSubmitAnswerClosedSession(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedQuestion(store, "q1", "quiz1", false, `"a"`)
	session := seedSession(store, "s1", "user1", "quiz1", 1)
	session.Status = model.SessionAbandoned
	svc := newTestService(store, nil)

	if _, err := svc.SubmitAnswer("user1", "s1", "q1", json.RawMessage(`"a"`)); err != util.ErrSessionNotInProgress {
		t.Fatalf("err = %v, want ErrSessionNotInProgress", err)
	}
}

func TestAnswerMatches(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		correct   string
		want      bool
	}{
		{"string equal", `"seoul"`, `"seoul"`, true},
		{"string case sensitive", `"Seoul"`, `"seoul"`, false},
		{"number forms", `1`, `1.0`, true},
		{"bool", `true`, `true`, true},
		{"array order matters", `["a","b"]`, `["b","a"]`, false},
		{"array equal", `["a","b"]`, `["a","b"]`, true},
		{"object key order ignored", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"object value differs", `{"a":1}`, `{"a":2}`, false},
		{"type mismatch", `"1"`, `1`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := answerMatches(json.RawMessage(tt.submitted), json.RawMessage(tt.correct))
			if err != nil {
				t.Fatalf("answerMatches: %v", err)
			}
			if got != tt.want {
				t.Errorf("answerMatches(%s, %s) = %v, want %v", tt.submitted, tt.correct, got, tt.want)
			}
		})
	}
}

func TestAnswerMatchesInvalidSubmission(t *testing.T) {
	if _, err := answerMatches(json.RawMessage(`{broken`), json.RawMessage(`"a"`)); err != util.ErrInvalidAnswerPayload {
		t.Fatalf("err = %v, want ErrInvalidAnswerPayload", err)
	}
}

func TestCompleteSessionQuit(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	session := seedSession(store, "s1", "user1", "quiz1", 1)
	store.CreateProgress(&model.UserQuizProgress{UserID: "user1", QuizID: "quiz1", CurrentRound: 0})
	svc := newTestService(store, nil)

	result, err := svc.CompleteSession("user1", "s1", ActionQuit)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if result.Status != model.SessionAbandoned {
		t.Errorf("status = %s, want ABANDONED", result.Status)
	}
	if result.NextSession != nil {
		t.Error("quit should not open a next session")
	}
	if session.Status != model.SessionAbandoned || session.CompletedAt == nil {
		t.Errorf("session = %+v, want abandoned with completedAt", session)
	}

	progress, _ := store.GetProgress("user1", "quiz1")
	if progress.CurrentRound != 0 {
		t.Errorf("currentRound = %d, want 0 (quit does not advance)", progress.CurrentRound)
	}
	if progress.LastAttemptDate == nil || !progress.LastAttemptDate.Equal(testNow) {
		t.Errorf("lastAttemptDate = %v, want %v", progress.LastAttemptDate, testNow)
	}
}

func TestCompleteSessionContinue(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	session := seedSession(store, "s1", "user1", "quiz1", 1)
	session.QuestionsCount = 5
	store.CreateProgress(&model.UserQuizProgress{UserID: "user1", QuizID: "quiz1", CurrentRound: 0})
	svc := newTestService(store, nil)

	result, err := svc.CompleteSession("user1", "s1", ActionContinue)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if result.Status != model.SessionCompleted {
		t.Errorf("status = %s, want COMPLETED", result.Status)
	}
	if result.NextSession == nil {
		t.Fatal("want next session")
	}
	if result.NextSession.RoundNumber != 2 {
		t.Errorf("next round = %d, want 2", result.NextSession.RoundNumber)
	}
	if _, ok := store.sessions[result.NextSession.ID]; !ok {
		t.Error("next session not persisted")
	}

	progress, _ := store.GetProgress("user1", "quiz1")
	if progress.CurrentRound != 1 || progress.IsCompleted {
		t.Errorf("progress = %+v, want round 1 not completed", progress)
	}
	if progress.TotalQuestionsAnswered != 5 {
		t.Errorf("totalQuestionsAnswered = %d, want 5", progress.TotalQuestionsAnswered)
	}
}

func TestCompleteSessionFinalRound(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedSession(store, "s1", "user1", "quiz1", 3)
	store.CreateProgress(&model.UserQuizProgress{UserID: "user1", QuizID: "quiz1", CurrentRound: 2})
	svc := newTestService(store, nil)

	result, err := svc.CompleteSession("user1", "s1", ActionContinue)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if result.NextSession != nil {
		t.Error("final round should not open a next session")
	}

	progress, _ := store.GetProgress("user1", "quiz1")
	if progress.CurrentRound != 3 || !progress.IsCompleted {
		t.Errorf("progress = %+v, want round 3 completed", progress)
	}
}

func TestCompleteSessionInvalidAction(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	if _, err := svc.CompleteSession("user1", "s1", "pause"); err != util.ErrInvalidAction {
		t.Fatalf("err = %v, want ErrInvalidAction", err)
	}
}

func TestCompleteSessionAlreadyClosed(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	session := seedSession(store, "s1", "user1", "quiz1", 1)
	session.Status = model.SessionCompleted
	svc := newTestService(store, nil)

	if _, err := svc.CompleteSession("user1", "s1", ActionContinue); err != util.ErrSessionNotInProgress {
		t.Fatalf("err = %v, want ErrSessionNotInProgress", err)
	}
}

func TestCompleteSessionOwnership(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 3, 5)
	seedSession(store, "s1", "user1", "quiz1", 1)
	svc := newTestService(store, nil)

	if _, err := svc.CompleteSession("user2", "s1", ActionQuit); err != util.ErrSessionNotFound {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestFullRoundFlow(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", 2, 3)
	for i := 0; i < 6; i++ {
		seedQuestion(store, fmt.Sprintf("q%d", i), "quiz1", false, `"a"`)
	}
	svc := newTestService(store, nil)

	session, err := svc.CreateSession("user1", "quiz1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	result, err := svc.SessionQuestions("user1", session.ID)
	if err != nil {
		t.Fatalf("SessionQuestions: %v", err)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(result.Questions))
	}

	for _, q := range result.Questions {
		if _, err := svc.SubmitAnswer("user1", session.ID, q.ID, json.RawMessage(`"a"`)); err != nil {
			t.Fatalf("SubmitAnswer %s: %v", q.ID, err)
		}
	}

	complete, err := svc.CompleteSession("user1", session.ID, ActionContinue)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if complete.NextSession == nil || complete.NextSession.RoundNumber != 2 {
		t.Fatalf("next session = %+v, want round 2", complete.NextSession)
	}

	// 第二回合只剩没答过的 3 道题
	result, err = svc.SessionQuestions("user1", complete.NextSession.ID)
	if err != nil {
		t.Fatalf("round 2 questions: %v", err)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("round 2 questions = %d, want 3", len(result.Questions))
	}
	for _, q := range result.Questions {
		if _, err := svc.SubmitAnswer("user1", complete.NextSession.ID, q.ID, json.RawMessage(`"a"`)); err != nil {
			t.Fatalf("round 2 submit %s: %v", q.ID, err)
		}
	}

	complete, err = svc.CompleteSession("user1", complete.NextSession.ID, ActionContinue)
	if err != nil {
		t.Fatalf("round 2 complete: %v", err)
	}
	if complete.NextSession != nil {
		t.Error("max rounds reached, no next session expected")
	}

	progress, _ := store.GetProgress("user1", "quiz1")
	if !progress.IsCompleted || progress.TotalQuestionsAnswered != 6 {
		t.Fatalf("progress = %+v, want completed with 6 answered", progress)
	}

	if _, err := svc.CreateSession("user1", "quiz1"); err != util.ErrQuizAlreadyCompleted {
		t.Fatalf("err = %v, want ErrQuizAlreadyCompleted", err)
	}
}
