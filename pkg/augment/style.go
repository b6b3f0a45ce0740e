package augment

const stylesheet = `
.ext-block-button {
  margin-left: 6px;
  padding: 0 6px;
  font-size: 12px;
  line-height: 18px;
  border: 1px solid #fb7299;
  border-radius: 4px;
  background: #fff;
  color: #fb7299;
  cursor: pointer;
}
.ext-block-button:disabled { opacity: .5; cursor: default; }
.ext-block-button.ext-blocked { background: #fb7299; color: #fff; }
.ext-keyword-highlight { position: relative !important; }
.ext-highlight-border {
  position: absolute;
  inset: -3px;
  border: 3px solid #ff4d4f;
  border-radius: 8px;
  pointer-events: none;
  z-index: 10;
}
.ext-overlay-block-btn {
  position: absolute;
  top: 6px;
  right: 6px;
  z-index: 11;
  padding: 2px 8px;
  font-size: 12px;
  border: none;
  border-radius: 4px;
  background: #ff4d4f;
  color: #fff;
  cursor: pointer;
}
#ext-hover-tooltip {
  position: absolute;
  z-index: 100000;
  max-width: 360px;
  padding: 8px 10px;
  font-size: 12px;
  line-height: 1.6;
  border-radius: 6px;
  background: rgba(0, 0, 0, .85);
  color: #fff;
}
#ext-hover-tooltip .ext-tt-title { font-weight: bold; margin-bottom: 4px; }
#ext-hover-tooltip .ext-copied-message { color: #52c41a; }
`

// injectStyle adds the engine's stylesheet once per document.
func (e *Engine) injectStyle() {
	if e.doc.GetElementByID(styleID) != nil {
		return
	}
	parent := e.doc.Head()
	if parent == nil {
		parent = e.doc.Body()
	}
	if parent == nil {
		return
	}
	el := e.doc.CreateElement("style")
	el.SetID(styleID)
	el.SetText(stylesheet)
	parent.AppendChild(el)
}
