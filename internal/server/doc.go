// Package server は、TCP接続の受付と処理のディスパッチを管理します。
//
// このパッケージは、リスナーでの接続受付、ワーカープールへのジョブ投入、
// 1接続分のリクエスト処理、状態確認用の管理サーバーを担当します。
//
// 責務:
//   - 接続の受付（受付ループがブロックするのは Accept のみ）
//   - 接続ごとのジョブ作成とワーカープールへの投入
//   - リクエスト行の読み込み、応答の書き込み、接続のクローズ
//   - 受付数の上限到達、キャンセル、シグナルによる停止
//   - 管理サーバー（/health, /api/status）の提供
//
// 仕様:
//   - 接続は受付ループからちょうど1つのジョブへ所有権が移る
//   - 受付・読み込み・書き込みの失敗はその接続だけを破棄する
//   - リクエスト行の読み込みと応答の書き込みにタイムアウトはない
//   - 管理サーバーはGinを使用
package server
