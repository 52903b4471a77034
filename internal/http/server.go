package http

import (
	"github.com/gin-gonic/gin"

	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type Server struct {
	engine *gin.Engine
	log    *logger.Logger
}

func NewServer(engine *gin.Engine, log *logger.Logger) *Server {
	return &Server{engine: engine, log: log}
}

func (s *Server) Run(addr string) error {
	s.log.Info("HTTP server listening", "addr", addr)
	return s.engine.Run(addr)
}
